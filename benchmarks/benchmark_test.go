package benchmarks_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

// ---- Fixtures ----

const userSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "pattern": "^u_[0-9]+$"},
		"name": {"type": "string", "minLength": 1},
		"age": {"type": "integer", "minimum": 0},
		"email": {"type": "string", "format": "email"}
	}
}`

const hugeSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "meta"],
		"properties": {
			"id": {"type": "string"},
			"age": {"type": "integer", "minimum": 0},
			"active": {"type": "boolean"},
			"meta": {"$ref": "#/$defs/meta"}
		}
	},
	"$defs": {
		"meta": {"type": "object", "properties": {"score": {"type": "number", "multipleOf": 1}}}
	}
}`

func smallUserJSON() []byte { return []byte(`{"id":"u_1","name":"alice","age":30}`) }

// 10k objects with 8 extra fields each
const (
	hugeObjects   = 10000
	hugeExtraKeys = 8
)

func generateHugeJSONArray(numObjects, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		n := strconv.Itoa(i)
		buf.WriteString(`{"id":"obj_` + n + `","name":"n` + n + `","age":` + n + `,"active":`)
		buf.WriteString(strconv.FormatBool(i%2 == 0))
		buf.WriteString(`,"meta":{"score":` + n + `}`)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(`,"k` + strconv.Itoa(k) + `":"v` + n + `_` + strconv.Itoa(k) + `"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func mustParse(tb testing.TB, data []byte) any {
	tb.Helper()
	v, err := jsoncover.ParseJSON(data, jsoncover.ParseOpt{})
	if err != nil {
		tb.Fatalf("parse failed: %v", err)
	}
	return v
}

// ---- Compile ----

func Benchmark_Compile_Small(b *testing.B) {
	ctx := context.Background()
	data := []byte(userSchema)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := jsoncover.Compile(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Micro benchmarks (small inputs) ----

func Benchmark_Validate_Small(b *testing.B) {
	ctx := context.Background()
	s := jsoncover.MustCompile(userSchema)
	inst := mustParse(b, smallUserJSON())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if out := s.Validate(ctx, inst); !out.Valid {
			b.Fatal(out.Errors)
		}
	}
}

func Benchmark_Matches_Small(b *testing.B) {
	s := jsoncover.MustCompile(userSchema)
	inst := mustParse(b, smallUserJSON())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !s.Matches(inst) {
			b.Fatal("expected match")
		}
	}
}

func Benchmark_Cover_Small(b *testing.B) {
	ctx := context.Background()
	s := jsoncover.MustCompile(userSchema)
	inst := mustParse(b, smallUserJSON())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := s.Cover(ctx, inst); res.Coverage.Unvalidated != 1 {
			b.Fatalf("unexpected coverage %s", res.Coverage)
		}
	}
}

func Benchmark_ValidateBytes_Small(b *testing.B) {
	ctx := context.Background()
	s := jsoncover.MustCompile(userSchema)
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ValidateBytes(ctx, data, jsoncover.ParseOpt{}); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Macro benchmarks (huge JSON) ----

func benchmarkParse(b *testing.B, d jsoncover.JSONDriver) {
	jsoncover.SetJSONDriver(d)
	defer jsoncover.UseDefaultJSONDriver()
	data := generateHugeJSONArray(hugeObjects, hugeExtraKeys)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := jsoncover.ParseJSON(data, jsoncover.ParseOpt{}); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ParseJSON_HugeArray_GoJSON(b *testing.B) { benchmarkParse(b, jsoncover.GoJSONDriver()) }
func Benchmark_ParseJSON_HugeArray_Std(b *testing.B)    { benchmarkParse(b, jsoncover.StdJSONDriver()) }

func Benchmark_ParseJSON_HugeArray_DuplicateCheck(b *testing.B) {
	data := generateHugeJSONArray(hugeObjects, hugeExtraKeys)
	opt := jsoncover.ParseOpt{Strictness: jsoncover.Strictness{OnDuplicateKey: jsoncover.Error}}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := jsoncover.ParseJSON(data, opt); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Validate_HugeArray(b *testing.B) {
	ctx := context.Background()
	s := jsoncover.MustCompile(hugeSchema)
	data := generateHugeJSONArray(hugeObjects, hugeExtraKeys)
	inst := mustParse(b, data)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if out := s.Validate(ctx, inst); !out.Valid {
			b.Fatal(out.Errors[0])
		}
	}
}

func Benchmark_Cover_HugeArray(b *testing.B) {
	ctx := context.Background()
	s := jsoncover.MustCompile(hugeSchema)
	data := generateHugeJSONArray(hugeObjects, hugeExtraKeys)
	inst := mustParse(b, data)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := s.Cover(ctx, inst); !res.Output.Valid {
			b.Fatal(res.Output.Errors[0])
		}
	}
}

package compare_test

import (
	"encoding/json"
	"testing"

	sonic "github.com/bytedance/sonic"
	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fastjson"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

// ---- ParseOnly: bytes -> memory structure (no validation) ----
//
// The general-purpose decoders build map[string]any; jsoncover builds its
// ordered value model with json.Number text, which is what validation needs.

type decodeFunc func([]byte) error

var decoders = []struct {
	name   string
	decode decodeFunc
}{
	{"stdlib", func(b []byte) error { var v any; return json.Unmarshal(b, &v) }},
	{"gojson", func(b []byte) error { var v any; return gojson.Unmarshal(b, &v) }},
	{"jsoniter", func(b []byte) error { var v any; return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, &v) }},
	{"sonic", func(b []byte) error { var v any; return sonic.Unmarshal(b, &v) }},
	{"fastjson", func(b []byte) error { var p fastjson.Parser; _, err := p.ParseBytes(b); return err }},
	{"jsoncover", func(b []byte) error { _, err := jsoncover.ParseJSON(b, jsoncover.ParseOpt{}); return err }},
	{"jsoncover_std", func(b []byte) error {
		_, err := jsoncover.ParseSource(jsoncover.StdJSONDriver().NewBytes(b), jsoncover.ParseOpt{})
		return err
	}},
}

func benchmarkDecoders(b *testing.B, data []byte) {
	for _, d := range decoders {
		b.Run(d.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := d.decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func Benchmark_ParseOnly_Small(b *testing.B) { benchmarkDecoders(b, smallUserJSON()) }

func Benchmark_ParseOnly_HugeArray(b *testing.B) {
	benchmarkDecoders(b, generateHugeJSONArray(cmpHugeN, cmpHugeK))
}

func generateDeepNested(depth int) []byte {
	b := make([]byte, 0, depth*8)
	for i := 0; i < depth; i++ {
		b = append(b, `{"a":`...)
	}
	b = append(b, '1')
	for i := 0; i < depth; i++ {
		b = append(b, '}')
	}
	return b
}

func Benchmark_ParseOnly_DeepNested(b *testing.B) { benchmarkDecoders(b, generateDeepNested(512)) }

// Every decoder must accept the fixtures it is benchmarked on.
func TestDecodersAcceptFixtures(t *testing.T) {
	for _, d := range decoders {
		for _, data := range [][]byte{smallUserJSON(), generateHugeJSONArray(10, 2), generateDeepNested(64)} {
			if err := d.decode(data); err != nil {
				t.Fatalf("%s: %v", d.name, err)
			}
		}
	}
}

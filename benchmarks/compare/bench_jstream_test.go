//go:build jstream

package compare_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/bcicen/jstream"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

// jstream splits the array; each element is validated on its own so the
// whole document never has to be held as one tree.
func Benchmark_StreamValidate_jstream_jsoncover_HugeArray(b *testing.B) {
	ctx := context.Background()
	s := compileOurs(b, jsonSchemaUser)
	data := generateHugeJSONArray(cmpHugeN, cmpHugeK)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := jstream.NewDecoder(bytes.NewReader(data), 1)
		n := 0
		for mv := range dec.Stream() {
			out, err := s.ValidateBytes(ctx, data[mv.Offset:mv.Offset+mv.Length], jsoncover.ParseOpt{})
			if err != nil || !out.Valid {
				b.Fatal(err, out.Errors)
			}
			n++
		}
		if err := dec.Err(); err != nil {
			b.Fatal(err)
		}
		if n != cmpHugeN {
			b.Fatalf("streamed %d elements, want %d", n, cmpHugeN)
		}
	}
}

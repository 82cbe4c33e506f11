package jsoncover_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/coverage"
)

func TestCover_ConcurrentRunsAreIndependent(t *testing.T) {
	s := compile(t, `{
		"type":"object",
		"required":["id"],
		"properties":{
			"id":{"type":"integer"},
			"tags":{"type":"array","items":{"type":"string"}},
			"next":{"$ref":"#"}
		}
	}`)
	payloads := []string{
		`{"id":1}`,
		`{"id":"x","tags":["a",1]}`,
		`{"tags":[]}`,
		`{"id":1,"next":{"id":2,"tags":["t"]}}`,
	}
	want := make([]coverage.Report, len(payloads))
	for i, p := range payloads {
		want[i] = s.Cover(context.Background(), doc(p)).Coverage
	}

	const rounds = 50
	got := make([]coverage.Report, rounds*len(payloads))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for i := range got {
		g.Go(func() error {
			got[i] = s.Cover(ctx, doc(payloads[i%len(payloads)])).Coverage
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, r := range got {
		assert.Equal(t, want[i%len(payloads)], r, "run %d", i)
	}
}

func TestCompiler_ConcurrentCompile(t *testing.T) {
	ctx := context.Background()
	c := jsoncover.NewCompiler(jsoncover.Options{})
	for i := range 4 {
		require.NoError(t, c.AddResourceBytes(fmt.Sprintf("http://example.com/%d.json", i),
			[]byte(fmt.Sprintf(`{"properties":{"n":{"maximum":%d}}}`, i))))
	}
	schemas := make([]*jsoncover.Schema, 4)
	var g errgroup.Group
	for i := range schemas {
		g.Go(func() error {
			s, err := c.Compile(ctx, fmt.Sprintf("http://example.com/%d.json", i))
			schemas[i] = s
			return err
		})
	}
	require.NoError(t, g.Wait())
	for i, s := range schemas {
		assert.True(t, s.Matches(doc(fmt.Sprintf(`{"n":%d}`, i))))
		assert.False(t, s.Matches(doc(fmt.Sprintf(`{"n":%d}`, i+1))))
	}
}

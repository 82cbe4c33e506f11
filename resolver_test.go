package jsoncover_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

func TestRef_Anchor(t *testing.T) {
	s := compile(t, `{"$defs":{"pos":{"$anchor":"positive","type":"number","exclusiveMinimum":0}},"$ref":"#positive"}`)
	assert.True(t, s.Matches(1))
	assert.False(t, s.Matches(0))

	// the anchor is declared after the $ref that uses it
	s = compile(t, `{"$ref":"#foo","$defs":{"x":{"$anchor":"foo","type":"string"}}}`)
	assert.True(t, s.Matches("a"))
	out := validate(t, s, `1`)
	require.False(t, out.Valid)
	last := out.Errors[len(out.Errors)-1]
	assert.Equal(t, "#/$defs/x/type", last.AbsoluteKeywordLocation)
	assert.Equal(t, "#/$ref/type", last.KeywordLocation)

	ce := compileErr(t, `{"$ref":"#missing"}`)
	assert.ErrorIs(t, ce, jsoncover.ErrRefNotFound)

	ce = compileErr(t, `{"$anchor":5}`)
	assert.ErrorIs(t, ce, jsoncover.ErrInvalidSchema)
}

func TestRef_Draft07LocationIndependentID(t *testing.T) {
	s := compile(t, `{
		"$schema":"http://json-schema.org/draft-07/schema#",
		"definitions":{"a":{"$id":"#foo","type":"string"}},
		"properties":{"x":{"$ref":"#foo"}}
	}`)
	assert.Equal(t, jsoncover.Draft07, s.Dialect())
	assert.True(t, s.Matches(doc(`{"x":"y"}`)))
	assert.False(t, s.Matches(doc(`{"x":1}`)))
}

func TestRef_PercentEncodedPointer(t *testing.T) {
	s := compile(t, `{"$defs":{"a b":{"type":"string"},"c~d":{"type":"number"}},
		"properties":{"x":{"$ref":"#/$defs/a%20b"},"y":{"$ref":"#/$defs/c~0d"}}}`)
	assert.True(t, s.Matches(doc(`{"x":"s","y":1}`)))
	assert.False(t, s.Matches(doc(`{"x":1}`)))
	assert.False(t, s.Matches(doc(`{"y":"s"}`)))
}

func TestRef_EmbeddedResource(t *testing.T) {
	s := compile(t, `{
		"$id":"http://example.com/root.json",
		"properties":{"item":{"$ref":"item.json"}},
		"$defs":{"item":{
			"$id":"item.json",
			"type":"object",
			"required":["sku"],
			"properties":{"price":{"$ref":"#/$defs/money"}},
			"$defs":{"money":{"type":"number","minimum":0}}
		}}
	}`)
	assert.Equal(t, "http://example.com/root.json", s.BaseURI())
	assert.True(t, s.Matches(doc(`{"item":{"sku":"a","price":1}}`)))

	out := s.Validate(context.Background(), doc(`{"item":{"price":-1}}`))
	require.False(t, out.Valid)
	var abs []string
	for _, e := range out.Errors {
		if !e.IsSummary() {
			abs = append(abs, e.AbsoluteKeywordLocation)
		}
	}
	assert.Equal(t, []string{
		"http://example.com/item.json#/$defs/item/required/0",
		"http://example.com/item.json#/$defs/item/$defs/money/minimum",
	}, abs)
}

func TestRef_AddResource(t *testing.T) {
	ctx := context.Background()
	c := jsoncover.NewCompiler(jsoncover.Options{})
	require.NoError(t, c.AddResourceBytes("http://example.com/defs.json", []byte(`{"$defs":{"id":{"type":"string","format":"uuid"}}}`)))
	s, err := c.CompileBytes(ctx, []byte(`{"properties":{"id":{"$ref":"defs.json#/$defs/id"}}}`), "http://example.com/main.json")
	require.NoError(t, err)

	assert.True(t, s.Matches(doc(`{"id":"`+uuid.NewString()+`"}`)))
	out := s.Validate(ctx, doc(`{"id":"not-a-uuid"}`))
	require.False(t, out.Valid)
	assert.Equal(t, "http://example.com/defs.json#/$defs/id/format", out.Errors[len(out.Errors)-1].AbsoluteKeywordLocation)
	assert.Equal(t, "#/properties/id/$ref/format", out.Errors[len(out.Errors)-1].KeywordLocation)
}

func TestCompile_FragmentSelectsSubschema(t *testing.T) {
	ctx := context.Background()
	c := jsoncover.NewCompiler(jsoncover.Options{})
	require.NoError(t, c.AddResourceBytes("http://example.com/s.json",
		[]byte(`{"$defs":{"pos":{"$anchor":"positive","type":"number","exclusiveMinimum":0}}}`)))

	byPointer, err := c.Compile(ctx, "http://example.com/s.json#/$defs/pos")
	require.NoError(t, err)
	byAnchor, err := c.Compile(ctx, "http://example.com/s.json#positive")
	require.NoError(t, err)
	assert.Same(t, byPointer, byAnchor)
	assert.Equal(t, "http://example.com/s.json#/$defs/pos", byPointer.AbsoluteLocation())

	_, err = c.Compile(ctx, "http://example.com/s.json#nope")
	assert.ErrorIs(t, err, jsoncover.ErrRefNotFound)
}

func TestRef_LoaderFailure(t *testing.T) {
	c := jsoncover.NewCompiler(jsoncover.Options{Loader: jsoncover.LoaderFunc(func(context.Context, string) (any, error) {
		return nil, errors.New("offline")
	})})
	_, err := c.CompileBytes(context.Background(), []byte(`{"$ref":"http://example.com/other.json"}`), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, jsoncover.ErrLoad)
	var ce *jsoncover.CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/$ref", ce.Pointer)

	_, err = c.Compile(context.Background(), "http://example.com/missing.json")
	assert.ErrorIs(t, err, jsoncover.ErrLoad)
}

func TestRef_MapLoader(t *testing.T) {
	m := jsoncover.NewMapLoader()
	m.Add("urn:example:name", map[string]any{"type": "string", "minLength": 1})
	c := jsoncover.NewCompiler(jsoncover.Options{Loader: m})
	s, err := c.CompileBytes(context.Background(), []byte(`{"properties":{"n":{"$ref":"urn:example:name"}}}`), "")
	require.NoError(t, err)
	assert.True(t, s.Matches(doc(`{"n":"x"}`)))
	assert.False(t, s.Matches(doc(`{"n":""}`)))
}

func TestRef_FileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"),
		[]byte(`{"properties":{"b":{"$ref":"b.yaml#/$defs/b"}}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"),
		[]byte("$defs:\n  b:\n    type: integer\n"), 0o644))

	uri, err := jsoncover.FileURI(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	s, err := jsoncover.NewCompiler(jsoncover.Options{}).Compile(context.Background(), uri)
	require.NoError(t, err)
	assert.True(t, s.Matches(doc(`{"b":1}`)))
	assert.False(t, s.Matches(doc(`{"b":"x"}`)))
}

func TestRef_HTTPLoader(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/root.json":
			_, _ = w.Write([]byte(`{"properties":{"a":{"$ref":"leaf.json"},"b":{"$ref":"leaf.json"}}}`))
		case "/leaf.json":
			_, _ = w.Write([]byte(`{"type":"boolean"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := jsoncover.NewCompiler(jsoncover.Options{Loader: jsoncover.HTTPLoader{Client: srv.Client()}})
	s, err := c.Compile(context.Background(), srv.URL+"/root.json")
	require.NoError(t, err)
	assert.True(t, s.Matches(doc(`{"a":true,"b":false}`)))
	assert.False(t, s.Matches(doc(`{"a":1}`)))
	// each document is fetched once
	assert.Equal(t, int32(2), hits.Load())

	_, err = c.Compile(context.Background(), srv.URL+"/missing.json")
	assert.ErrorIs(t, err, jsoncover.ErrLoad)
}

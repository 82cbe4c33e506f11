package kubeopenapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/kubeopenapi"
)

const bundle = `
apiVersion: v1
kind: ConfigMap
metadata:
  name: unrelated
data:
  a: b
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: widgets.example.com
spec:
  group: example.com
  names:
    kind: Widget
    plural: widgets
  scope: Namespaced
  versions:
    - name: v1alpha1
      served: false
      storage: false
      schema:
        openAPIV3Schema:
          type: object
          properties:
            spec:
              type: object
              properties:
                size:
                  type: string
                  enum: [S, M, L]
    - name: v1
      served: true
      storage: true
      schema:
        openAPIV3Schema:
          type: object
          required: [spec]
          properties:
            spec:
              type: object
              required: [replicas]
              properties:
                replicas:
                  type: integer
                  format: int32
                  minimum: 0
                port:
                  x-kubernetes-int-or-string: true
                tags:
                  type: array
                  x-kubernetes-list-type: set
                  items:
                    type: string
                ports:
                  type: array
                  x-kubernetes-list-type: map
                  x-kubernetes-list-map-keys: [name]
                  items:
                    type: object
                    properties:
                      name:
                        type: string
                      containerPort:
                        type: integer
                note:
                  type: string
                  nullable: true
                template:
                  type: object
                  x-kubernetes-embedded-resource: true
                  x-kubernetes-preserve-unknown-fields: true
`

const validWidget = `{"spec":{
	"replicas":3,
	"port":"http",
	"tags":["a","b"],
	"ports":[{"name":"web","containerPort":80}],
	"note":null,
	"template":{"apiVersion":"v1","kind":"Pod","metadata":{}}
}}`

func importKind(t *testing.T, opts kubeopenapi.Options) (*jsoncover.Schema, kubeopenapi.Diag) {
	t.Helper()
	s, d, err := kubeopenapi.ImportYAMLForCRDKind(context.Background(), []byte(bundle), "Widget", opts)
	require.NoError(t, err)
	return s, d
}

func keywordLocations(out jsoncover.BasicOutput) []string {
	var locs []string
	for _, e := range out.Errors {
		locs = append(locs, e.KeywordLocation)
	}
	return locs
}

func TestImportYAMLForCRDKind_ServedVersion(t *testing.T) {
	s, d := importKind(t, kubeopenapi.Options{EnableEmbeddedChecks: true})
	assert.Equal(t, "urn:kubeopenapi:widgets.example.com:v1", s.BaseURI())
	assert.True(t, s.Matches(jsonvalue.MustDecode(validWidget)))
	assert.Contains(t, d.Warnings(), "/properties/spec/properties/ports: list-map key uniqueness is not enforced")

	cases := map[string]struct {
		doc string
		loc string
	}{
		"int32 overflow":   {`{"spec":{"replicas":3000000000}}`, "#/properties/spec/properties/replicas/format"},
		"negative":         {`{"spec":{"replicas":-1}}`, "#/properties/spec/properties/replicas/minimum"},
		"int or string":    {`{"spec":{"replicas":1,"port":true}}`, "#/properties/spec/properties/port/anyOf"},
		"set duplicate":    {`{"spec":{"replicas":1,"tags":["a","a"]}}`, "#/properties/spec/properties/tags/uniqueItems"},
		"map key missing":  {`{"spec":{"replicas":1,"ports":[{"containerPort":80}]}}`, "#/properties/spec/properties/ports/items/required/0"},
		"not nullable":     {`{"spec":{"replicas":null}}`, "#/properties/spec/properties/replicas/type"},
		"embedded kind":    {`{"spec":{"replicas":1,"template":{"apiVersion":"v1"}}}`, "#/properties/spec/properties/template/required/1"},
		"spec is required": {`{}`, "#/required/0"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out := s.Validate(context.Background(), jsonvalue.MustDecode(tc.doc))
			assert.False(t, out.Valid)
			assert.Contains(t, keywordLocations(out), tc.loc)
		})
	}
}

func TestImportYAMLForCRDKind_EmbeddedChecksOff(t *testing.T) {
	s, _ := importKind(t, kubeopenapi.Options{})
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{"spec":{"replicas":1,"template":{"foo":1}}}`)))
}

func TestImportYAMLForCRDKind_VersionSelection(t *testing.T) {
	s, d := importKind(t, kubeopenapi.Options{Version: "v1alpha1"})
	assert.Equal(t, "urn:kubeopenapi:widgets.example.com:v1alpha1", s.BaseURI())
	assert.Contains(t, d.Warnings(), `version "v1alpha1" is not served`)
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{}`)))
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{"spec":{"size":"L"}}`)))
	assert.False(t, s.Matches(jsonvalue.MustDecode(`{"spec":{"size":"XL"}}`)))

	_, _, err := kubeopenapi.ImportYAMLForCRDKind(context.Background(), []byte(bundle), "Widget", kubeopenapi.Options{Version: "v9"})
	assert.ErrorIs(t, err, kubeopenapi.ErrNoSchema)
}

func TestImportYAMLForCRDName(t *testing.T) {
	s, _, err := kubeopenapi.ImportYAMLForCRDName(context.Background(), []byte(bundle), "widgets.example.com", kubeopenapi.Options{BaseURI: "http://example.com/widget.json"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/widget.json", s.BaseURI())

	res := s.Cover(context.Background(), jsonvalue.MustDecode(`{"spec":{"replicas":1}}`))
	cov := res.Coverage
	assert.Equal(t, cov.Total, cov.Validated+cov.Violated+cov.Unvalidated)
	assert.Greater(t, cov.Unvalidated, 0)

	_, _, err = kubeopenapi.ImportYAMLForCRDName(context.Background(), []byte(bundle), "gadgets.example.com", kubeopenapi.Options{})
	assert.ErrorIs(t, err, kubeopenapi.ErrNotFound)

	_, _, err = kubeopenapi.ImportYAMLForCRDKind(context.Background(), []byte(bundle), "ConfigMap", kubeopenapi.Options{})
	assert.ErrorIs(t, err, kubeopenapi.ErrNotFound)
}

func TestImport_LegacyValidation(t *testing.T) {
	crd := map[string]any{
		"kind":     "CustomResourceDefinition",
		"metadata": map[string]any{"name": "olds.example.com"},
		"spec": map[string]any{
			"version": "v1beta1",
			"validation": map[string]any{
				"openAPIV3Schema": map[string]any{
					"type":     "object",
					"required": []any{"name"},
				},
			},
		},
	}
	s, _, err := kubeopenapi.Import(context.Background(), crd, kubeopenapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, "urn:kubeopenapi:olds.example.com:v1beta1", s.BaseURI())
	assert.False(t, s.Matches(jsonvalue.MustDecode(`{}`)))
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{"name":"x"}`)))
}

func TestImport_BareSchema(t *testing.T) {
	s, d, err := kubeopenapi.Import(context.Background(), []byte(`{"openAPIV3Schema":{"type":"string","format":"byte"}}`), kubeopenapi.Options{})
	require.NoError(t, err)
	assert.True(t, d.HasWarnings())
	assert.True(t, s.Matches("aGVsbG8="))
	assert.False(t, s.Matches("not base64!"))

	s, d, err = kubeopenapi.Import(context.Background(), []byte("type: object\nproperties:\n  n:\n    type: integer\n    format: int64\n"), kubeopenapi.Options{})
	require.NoError(t, err)
	assert.False(t, d.HasWarnings())
	assert.False(t, s.Matches(jsonvalue.MustDecode(`{"n":9223372036854775808}`)))
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{"n":9223372036854775807}`)))
}

func TestImport_DoesNotModifyInput(t *testing.T) {
	doc := jsonvalue.MustDecode(`{"type":"object","properties":{"n":{"type":"string","nullable":true}}}`).(*jsonvalue.Object)
	before, err := jsonvalue.Marshal(doc)
	require.NoError(t, err)

	s, _, err := kubeopenapi.Import(context.Background(), doc, kubeopenapi.Options{})
	require.NoError(t, err)
	assert.True(t, s.Matches(jsonvalue.MustDecode(`{"n":null}`)))

	after, err := jsonvalue.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestImport_Errors(t *testing.T) {
	_, _, err := kubeopenapi.Import(context.Background(), nil, kubeopenapi.Options{})
	assert.Error(t, err)
	_, _, err = kubeopenapi.Import(context.Background(), []byte(`[1]`), kubeopenapi.Options{})
	assert.Error(t, err)

	crd := map[string]any{"kind": "CustomResourceDefinition", "spec": map[string]any{}}
	_, _, err = kubeopenapi.Import(context.Background(), crd, kubeopenapi.Options{})
	assert.ErrorIs(t, err, kubeopenapi.ErrNoSchema)

	// compile errors surface unchanged
	_, _, err = kubeopenapi.Import(context.Background(), []byte(`{"type":"object","minProperties":-1}`), kubeopenapi.Options{})
	var ce *jsoncover.CompileError
	assert.ErrorAs(t, err, &ce)
}

// Package kubeopenapi compiles the OpenAPI v3 schemas carried by Kubernetes
// CustomResourceDefinitions into jsoncover schemas.
package kubeopenapi

import (
	"context"
	"errors"
	"fmt"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
)

var (
	// ErrNoSchema is returned when a document holds no openAPIV3Schema for
	// the requested version.
	ErrNoSchema = errors.New("kubeopenapi: no openAPIV3Schema found")
	// ErrNotFound is returned when a YAML bundle has no matching CRD.
	ErrNotFound = errors.New("kubeopenapi: CRD not found in YAML bundle")
)

// Import compiles a CRD document or a bare openAPIV3Schema. The input may be
// a *jsonvalue.Object, a map[string]any or raw JSON/YAML bytes. The input is
// not modified.
func Import(ctx context.Context, doc any, opts Options) (*jsoncover.Schema, Diag, error) {
	d := &simpleDiag{}
	root, err := toObject(doc, opts)
	if err != nil {
		return nil, d, err
	}

	name, version := "schema", opts.Version
	var schema *jsonvalue.Object
	switch {
	case root.Has("openAPIV3Schema"):
		schema, _ = lookup(root, "openAPIV3Schema").(*jsonvalue.Object)
	case lookup(root, "kind") == "CustomResourceDefinition":
		if n, ok := lookup(root, "metadata", "name").(string); ok && n != "" {
			name = n
		}
		schema, version = unwrapCRDSchema(root, opts.Version, d)
	default:
		schema = root
	}
	if schema == nil {
		if opts.Version != "" {
			return nil, d, fmt.Errorf("%w: version %q of %s", ErrNoSchema, opts.Version, name)
		}
		return nil, d, fmt.Errorf("%w: %s", ErrNoSchema, name)
	}

	schema = clone(schema).(*jsonvalue.Object)
	warnNonObjectRoot(schema, d)
	st := structural{d: d, embedded: opts.EnableEmbeddedChecks}
	st.schema(schema, "")

	uri := opts.BaseURI
	if uri == "" {
		uri = "urn:kubeopenapi:" + name
		if version != "" {
			uri += ":" + version
		}
	}
	co := opts.Compiler
	co.Formats = withOpenAPIFormats(co.Formats)
	s, err := jsoncover.NewCompiler(co).CompileDocument(ctx, schema, uri)
	return s, d, err
}

func toObject(doc any, opts Options) (*jsonvalue.Object, error) {
	var v any
	switch t := doc.(type) {
	case nil:
		return nil, errors.New("kubeopenapi: nil schema")
	case []byte:
		parsed, err := jsoncover.ParseDocument(t, "", opts.Compiler.Parse)
		if err != nil {
			return nil, fmt.Errorf("kubeopenapi: %w", err)
		}
		v = parsed
	default:
		v = jsonvalue.FromMap(t)
	}
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return nil, fmt.Errorf("kubeopenapi: expected an object, got %s", jsonvalue.TypeOf(v))
	}
	return obj, nil
}

// unwrapCRDSchema extracts spec.versions[].schema.openAPIV3Schema. Without a
// requested version it prefers the first served one, then any version with a
// schema, then the legacy spec.validation.openAPIV3Schema.
func unwrapCRDSchema(crd *jsonvalue.Object, want string, d *simpleDiag) (*jsonvalue.Object, string) {
	vers, _ := lookup(crd, "spec", "versions").([]any)
	var fallback *jsonvalue.Object
	var fallbackName string
	for _, raw := range vers {
		vm, _ := raw.(*jsonvalue.Object)
		if vm == nil {
			continue
		}
		name, _ := lookup(vm, "name").(string)
		served := true
		if sv, ok := lookup(vm, "served").(bool); ok {
			served = sv
		}
		oas, _ := lookup(vm, "schema", "openAPIV3Schema").(*jsonvalue.Object)
		if want != "" {
			if name != want {
				continue
			}
			if !served && oas != nil {
				d.warnf("version %q is not served", name)
			}
			return oas, name
		}
		if oas == nil {
			continue
		}
		if served {
			return oas, name
		}
		if fallback == nil {
			fallback, fallbackName = oas, name
		}
	}
	if fallback != nil {
		d.warnf("no served version; using %q", fallbackName)
		return fallback, fallbackName
	}

	legacyVersion, _ := lookup(crd, "spec", "version").(string)
	if want != "" && want != legacyVersion {
		return nil, want
	}
	oas, _ := lookup(crd, "spec", "validation", "openAPIV3Schema").(*jsonvalue.Object)
	return oas, legacyVersion
}

// warnNonObjectRoot warns when the root declares a non-object type.
func warnNonObjectRoot(schema *jsonvalue.Object, d *simpleDiag) {
	if t, _ := lookup(schema, "type").(string); t != "object" && t != "" {
		d.warnf("root schema has type %q; Kubernetes expects an object", t)
	}
}

// lookup walks nested object members.
func lookup(o *jsonvalue.Object, path ...string) any {
	var cur any = o
	for _, k := range path {
		obj, ok := cur.(*jsonvalue.Object)
		if !ok {
			return nil
		}
		cur, _ = obj.Get(k)
	}
	return cur
}

func clone(v any) any {
	switch t := v.(type) {
	case *jsonvalue.Object:
		out := jsonvalue.NewObject(t.Len())
		t.Range(func(k string, e any) bool {
			out.Set(k, clone(e))
			return true
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	}
	return v
}

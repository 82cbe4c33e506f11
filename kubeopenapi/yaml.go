package kubeopenapi

import (
	"context"
	"fmt"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
)

// ImportYAMLForCRDKind scans a multi-document YAML (e.g. a CRD bundle) and
// imports the first CustomResourceDefinition whose spec.names.kind matches.
func ImportYAMLForCRDKind(ctx context.Context, data []byte, kind string, opts Options) (*jsoncover.Schema, Diag, error) {
	return importYAML(ctx, data, opts, "kind "+kind, func(crd *jsonvalue.Object) bool {
		return lookup(crd, "spec", "names", "kind") == kind
	})
}

// ImportYAMLForCRDName scans a multi-document YAML and imports the CRD with
// the given metadata.name.
func ImportYAMLForCRDName(ctx context.Context, data []byte, name string, opts Options) (*jsoncover.Schema, Diag, error) {
	return importYAML(ctx, data, opts, "name "+name, func(crd *jsonvalue.Object) bool {
		return lookup(crd, "metadata", "name") == name
	})
}

func importYAML(ctx context.Context, data []byte, opts Options, what string, match func(*jsonvalue.Object) bool) (*jsoncover.Schema, Diag, error) {
	docs, err := jsoncover.ParseYAMLDocuments(data, opts.Compiler.Parse)
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: %w", err)
	}
	for _, doc := range docs {
		obj, ok := doc.(*jsonvalue.Object)
		if !ok || lookup(obj, "kind") != "CustomResourceDefinition" {
			continue
		}
		if match(obj) {
			return Import(ctx, obj, opts)
		}
	}
	return nil, &simpleDiag{}, fmt.Errorf("%w: %s", ErrNotFound, what)
}

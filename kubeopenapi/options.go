package kubeopenapi

import (
	"fmt"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

// Options controls how a CRD schema is extracted and compiled.
type Options struct {
	// Version selects spec.versions[].name. Empty picks the first served
	// version, then the first version carrying a schema.
	Version string
	// EnableEmbeddedChecks adds apiVersion/kind requirements to objects
	// marked x-kubernetes-embedded-resource.
	EnableEmbeddedChecks bool
	// BaseURI names the compiled document. Defaults to
	// "urn:kubeopenapi:<crd name>:<version>".
	BaseURI string
	// Compiler is passed to jsoncover.NewCompiler. A nil Formats handler is
	// replaced by one that knows the OpenAPI integer formats.
	Compiler jsoncover.Options
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

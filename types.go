package jsoncover

import (
	"log/slog"

	"github.com/ShubhamK2003/JSONCover/format"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// Severity expresses the severity level for document issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement while reading documents.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// ParseOpt bundles document parsing options. Zero values disable the
// corresponding limit.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
}

// Dialect identifies the JSON Schema draft a document declared.
type Dialect int

const (
	Draft201909 Dialect = iota
	Draft07
)

func (d Dialect) String() string {
	if d == Draft07 {
		return "draft-07"
	}
	return "2019-09"
}

// FormatHandler supplies checkers for non-standard format names. It is
// consulted before the built-in table; returning nil falls through.
type FormatHandler func(name string) format.Checker

// KeywordContext describes where a custom keyword was found.
type KeywordContext struct {
	BaseURI string
	Pointer pointer.Pointer // location of the keyword itself
	Schema  any             // the enclosing schema object
}

// CustomCheck validates an instance for a custom keyword. It returns a
// failure message, or "" when the instance passes.
type CustomCheck func(instance any) string

// KeywordHandler compiles keywords the compiler does not know. Returning a
// nil CustomCheck and nil error ignores the keyword; an error aborts the
// compile.
type KeywordHandler interface {
	Compile(ctx KeywordContext, keyword string, value any) (CustomCheck, error)
}

// KeywordHandlerFunc adapts a function to KeywordHandler.
type KeywordHandlerFunc func(ctx KeywordContext, keyword string, value any) (CustomCheck, error)

func (f KeywordHandlerFunc) Compile(ctx KeywordContext, keyword string, value any) (CustomCheck, error) {
	return f(ctx, keyword, value)
}

// Options configures a Compiler.
type Options struct {
	// Loader fetches documents for URIs that are neither added with
	// AddResource nor embedded. Defaults to DefaultLoader().
	Loader Loader
	// Formats resolves non-standard format names.
	Formats FormatHandler
	// Keywords compiles unknown, non "x-" keywords.
	Keywords KeywordHandler
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
	// Parse applies to every document the compiler reads itself.
	Parse ParseOpt
	// DefaultDialect is used when a document has no $schema.
	DefaultDialect Dialect
}

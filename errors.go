package jsoncover

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes attached to every ErrorEntry. They follow the issue-code
// vocabulary used across the package family and drive message lookup.
const (
	CodeSubschema     = "subschema"
	CodeFalseSchema   = "false_schema"
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeInvalidEnum   = "invalid_enum"
	CodeConst         = "const"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeNotMultiple   = "not_multiple"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooFew        = "too_few"
	CodeTooMany       = "too_many"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeUniqueness    = "uniqueness"
	CodeContains      = "contains"
	CodeNot           = "not"
	CodeOneOf         = "union_ambiguous"
	CodeAdditional    = "unknown_key"
	CodeDependency    = "dependency"
	CodeCustom        = "custom"
	CodeParseError    = "parse_error"
	CodeDuplicateKey  = "duplicate_key"
	CodeTruncated     = "truncated"
)

// ErrorEntry is one failure in Basic output form. Locations are JSON
// Pointers rendered as URI fragments; AbsoluteKeywordLocation is prefixed
// with the schema's base URI when it has one.
type ErrorEntry struct {
	Error                   string `json:"error"`
	KeywordLocation         string `json:"keywordLocation"`
	AbsoluteKeywordLocation string `json:"absoluteKeywordLocation"`
	InstanceLocation        string `json:"instanceLocation"`
	// Code identifies the failed check; not part of the wire format.
	Code string `json:"-"`
}

// IsSummary reports whether e is the generic "A subschema had errors" entry
// emitted by a failing schema or combinator in front of its details.
func (e ErrorEntry) IsSummary() bool { return e.Code == CodeSubschema }

// BasicOutput is the top-level validation result.
type BasicOutput struct {
	Valid  bool         `json:"valid"`
	Errors []ErrorEntry `json:"errors,omitempty"`
}

// Err returns nil for a valid result and ValidationErrors otherwise.
func (o BasicOutput) Err() error {
	if o.Valid {
		return nil
	}
	return ValidationErrors(o.Errors)
}

// ValidationErrors is a collection of failures that implements error.
type ValidationErrors []ErrorEntry

// Error summarizes the first few non-summary entries.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	shown, total := 0, 0
	for _, e := range ve {
		if e.IsSummary() {
			continue
		}
		total++
		if shown == maxShown {
			continue
		}
		if shown > 0 {
			b.WriteString("; ")
		}
		// e.g. required at #: Required property "a" not found
		fmt.Fprintf(b, "%s at %s: %s", e.Code, e.InstanceLocation, e.Error)
		shown++
	}
	if total == 0 {
		return ve[0].Error
	}
	if total > shown {
		fmt.Fprintf(b, "; ... (total %d)", total)
	}
	return b.String()
}

// AsValidationErrors extracts ValidationErrors from an error using errors.As.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Sentinel causes carried by CompileError.
var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrRefNotFound   = errors.New("$ref not found")
	ErrRecursiveRef  = errors.New("recursive $ref")
	ErrLoad          = errors.New("cannot load document")
)

// CompileError is a fatal problem in a schema document. No schema is
// produced once one is returned.
type CompileError struct {
	Message string
	URI     string // base URI of the offending schema, "" for anonymous documents
	Pointer string // JSON Pointer of the offending keyword within its document
	Err     error
}

func (e *CompileError) Error() string {
	return e.Message + " - " + e.Location()
}

// Location renders uri#fragment, the bare pointer, or "root".
func (e *CompileError) Location() string {
	frag := fragmentOf(e.Pointer)
	switch {
	case e.URI != "":
		return e.URI + frag
	case e.Pointer != "":
		return e.Pointer
	}
	return "root"
}

func (e *CompileError) Unwrap() error { return e.Err }

// Issue is a problem found while reading a JSON or YAML document, such as a
// duplicate key or an exceeded depth limit.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"`
	Message string `json:"message"`
	Offset  int64  `json:"offset"` // Byte offset in the input source (-1 when unknown).
	Cause   error  `json:"-"`
}

// Issues is a collection of document issues that implements error.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
		if iss[i].Message != "" {
			b.WriteString(": " + iss[i].Message)
		}
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

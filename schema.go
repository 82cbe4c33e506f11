package jsoncover

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sync"

	"github.com/ShubhamK2003/JSONCover/format"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// SchemaKind tags the three shapes a compiled schema can take.
type SchemaKind int

const (
	KindGeneral SchemaKind = iota
	KindTrue
	KindFalse
)

// Schema is a compiled schema node. It is immutable once the compiler hands
// it out and may be shared by any number of goroutines.
type Schema struct {
	kind        SchemaKind
	title       string
	description string
	baseURI     string
	location    pointer.Pointer
	dialect     Dialect
	children    []Validator
	// constraints lists the absolute keyword locations this node's own
	// keywords declare, one per countable check.
	constraints []string

	log *slog.Logger

	declaredOnce sync.Once
	declared     []string
}

func (s *Schema) Kind() SchemaKind          { return s.kind }
func (s *Schema) Title() string             { return s.title }
func (s *Schema) Description() string       { return s.description }
func (s *Schema) BaseURI() string           { return s.baseURI }
func (s *Schema) Location() pointer.Pointer { return s.location }
func (s *Schema) Dialect() Dialect          { return s.dialect }

// Children returns the compiled keyword validators in document order.
func (s *Schema) Children() []Validator { return append([]Validator(nil), s.children...) }

// AbsoluteLocation renders the schema's base URI and pointer.
func (s *Schema) AbsoluteLocation() string { return absoluteLocation(s.baseURI, s.location) }

// Default returns the value of the "default" keyword, if declared.
func (s *Schema) Default() (any, bool) {
	for _, v := range s.children {
		if d, ok := v.(*Default); ok {
			return d.Value, true
		}
	}
	return nil, false
}

// DeclaredConstraints returns the number of constraints declared by every
// schema node reachable from s, following $ref targets. Shared nodes are
// counted once.
func (s *Schema) DeclaredConstraints() int { return len(s.constraintLocations()) }

func (s *Schema) constraintLocations() []string {
	s.declaredOnce.Do(func() {
		seen := map[*Schema]bool{}
		dedup := map[string]bool{}
		var out []string
		var walk func(*Schema)
		walk = func(n *Schema) {
			if n == nil || seen[n] {
				return
			}
			seen[n] = true
			for _, loc := range n.constraints {
				if !dedup[loc] {
					dedup[loc] = true
					out = append(out, loc)
				}
			}
			for _, v := range n.children {
				for _, c := range subschemas(v) {
					walk(c)
				}
			}
		}
		walk(s)
		s.declared = out
	})
	return s.declared
}

// Validator is a compiled keyword. The set of implementations is closed;
// evaluation switches over the concrete types.
type Validator interface {
	Location() pointer.Pointer
	BaseURI() string
	validator()
}

type node struct {
	baseURI string
	loc     pointer.Pointer
}

func (n node) Location() pointer.Pointer { return n.loc }
func (n node) BaseURI() string           { return n.baseURI }
func (node) validator()                  {}

// Combinators.

type AllOf struct {
	node
	Schemas []*Schema
}

type AnyOf struct {
	node
	Schemas []*Schema
}

type OneOf struct {
	node
	Schemas []*Schema
}

type Not struct {
	node
	Schema *Schema
}

// IfThenElse selects Then or Else by whether If matches. Then and Else may be
// nil.
type IfThenElse struct {
	node
	If, Then, Else *Schema
}

// Ref forwards to a schema owned by the compiler cache. Several Refs may
// share one target, and the target may be an ancestor for recursive schemas.
type Ref struct {
	node
	Ref    string
	Target *Schema
}

// Structural validators.

type NamedSchema struct {
	Name   string
	Schema *Schema
}

type Properties struct {
	node
	Properties []NamedSchema
}

type PatternSchema struct {
	Pattern string
	Schema  *Schema
	re      *regexp.Regexp
}

type PatternProperties struct {
	node
	Patterns []PatternSchema
}

// AdditionalProperties applies Schema to members matched by neither the
// sibling "properties" names nor the sibling "patternProperties" regexes.
type AdditionalProperties struct {
	node
	Schema   *Schema
	declared map[string]struct{}
	patterns []*regexp.Regexp
}

type PropertyNames struct {
	node
	Schema *Schema
}

// Items applies one schema to every element.
type Items struct {
	node
	Schema *Schema
}

// ItemsArray is the tuple form of "items".
type ItemsArray struct {
	node
	Schemas []*Schema
}

// AdditionalItems applies Schema to elements past the sibling tuple. Tuple is
// -1 when "items" is not an array, in which case nothing is checked.
type AdditionalItems struct {
	node
	Schema *Schema
	Tuple  int
}

// Contains counts matching elements. Max is -1 when unbounded.
type Contains struct {
	node
	Schema   *Schema
	Min, Max int
}

type Required struct {
	node
	Names []string
}

type DependentRequired struct {
	node
	Property string
	Names    []string
}

type DependentSchemas struct {
	node
	Property string
	Schema   *Schema
}

// PropertyCount is minProperties or maxProperties.
type PropertyCount struct {
	node
	Keyword string
	Limit   int
}

// ItemCount is minItems or maxItems.
type ItemCount struct {
	node
	Keyword string
	Limit   int
}

type UniqueItems struct {
	node
}

// Leaf validators.

type Type struct {
	node
	Types []string
}

type Enum struct {
	node
	Values []any
}

type Const struct {
	node
	Value any
}

type Pattern struct {
	node
	Pattern string
	re      *regexp.Regexp
}

type Format struct {
	node
	Name    string
	checker format.Checker
}

// NumberLimit is one of minimum, maximum, exclusiveMinimum,
// exclusiveMaximum or multipleOf.
type NumberLimit struct {
	node
	Keyword string
	Limit   json.Number
}

// StringLength is minLength or maxLength, counted in code points.
type StringLength struct {
	node
	Keyword string
	Limit   int
}

// Default records "default"; it never fails.
type Default struct {
	node
	Value any
}

// Extension records an "x-" key; it never fails.
type Extension struct {
	node
	Name  string
	Value any
}

// Custom wraps a check produced by a KeywordHandler.
type Custom struct {
	node
	Keyword string
	check   CustomCheck
}

// subschemas lists the schemas a validator evaluates directly.
func subschemas(v Validator) []*Schema {
	switch v := v.(type) {
	case *AllOf:
		return v.Schemas
	case *AnyOf:
		return v.Schemas
	case *OneOf:
		return v.Schemas
	case *Not:
		return []*Schema{v.Schema}
	case *IfThenElse:
		out := []*Schema{v.If}
		if v.Then != nil {
			out = append(out, v.Then)
		}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *Ref:
		return []*Schema{v.Target}
	case *Properties:
		out := make([]*Schema, len(v.Properties))
		for i, p := range v.Properties {
			out[i] = p.Schema
		}
		return out
	case *PatternProperties:
		out := make([]*Schema, len(v.Patterns))
		for i, p := range v.Patterns {
			out[i] = p.Schema
		}
		return out
	case *AdditionalProperties:
		return []*Schema{v.Schema}
	case *PropertyNames:
		return []*Schema{v.Schema}
	case *Items:
		return []*Schema{v.Schema}
	case *ItemsArray:
		return v.Schemas
	case *AdditionalItems:
		return []*Schema{v.Schema}
	case *Contains:
		return []*Schema{v.Schema}
	case *DependentSchemas:
		return []*Schema{v.Schema}
	}
	return nil
}

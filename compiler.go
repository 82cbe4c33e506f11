package jsoncover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// Compiler turns schema documents into executable Schema trees. Compiled
// nodes are cached by base URI and pointer, so every $ref to the same
// location shares one node for the lifetime of the Compiler (or until
// Reset).
//
// A Compiler serializes its own use; the schemas it returns are safe for
// concurrent validation.
type Compiler struct {
	mu        sync.Mutex
	opts      Options
	log       *slog.Logger
	loader    Loader
	resources *MapLoader

	docs      map[string]*document
	anonymous map[string]bool
	ids       map[string]resource
	anchors   map[string]resource
	cache     map[cacheKey]*cacheEntry
	regexes   map[string]*regexp.Regexp

	// descent counts the instance-descending keywords currently open on the
	// compile stack.
	descent int
	// created lists cache keys added by the compile in progress.
	created []cacheKey
}

// NewCompiler returns a Compiler configured by opts.
func NewCompiler(opts Options) *Compiler {
	c := &Compiler{opts: opts, resources: NewMapLoader()}
	c.log = opts.Logger
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	c.loader = opts.Loader
	if c.loader == nil {
		c.loader = DefaultLoader(opts.Parse)
	}
	c.reset()
	return c
}

func (c *Compiler) reset() {
	c.docs = map[string]*document{}
	c.anonymous = map[string]bool{}
	c.ids = map[string]resource{}
	c.anchors = map[string]resource{}
	c.cache = map[cacheKey]*cacheEntry{}
	c.regexes = map[string]*regexp.Regexp{}
	c.descent = 0
}

// Reset forgets every compiled node and every loaded document. Resources
// added with AddResource stay registered.
func (c *Compiler) Reset() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
}

// AddResource registers a parsed document under uri so $ref can reach it
// without the Loader.
func (c *Compiler) AddResource(uri string, doc any) error {
	if uri == "" {
		return errors.New("jsoncover: AddResource needs a URI")
	}
	c.resources.Add(uri, normalizeDocument(doc))
	return nil
}

// AddResourceBytes parses data as JSON or YAML and registers it under uri.
func (c *Compiler) AddResourceBytes(uri string, data []byte) error {
	doc, err := ParseDocument(data, uri, c.opts.Parse)
	if err != nil {
		return fmt.Errorf("jsoncover: resource %s: %w", uri, err)
	}
	return c.AddResource(uri, doc)
}

// Compile loads the document at uri and compiles the schema it addresses.
// A fragment selects a subschema by pointer or anchor.
func (c *Compiler) Compile(ctx context.Context, uri string) (*Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	base, frag, _ := strings.Cut(uri, "#")
	return c.compileRoot(ctx, func() (*document, error) {
		res, err := c.lookupResource(ctx, base)
		if err != nil {
			return nil, &CompileError{Message: "Unable to load schema", URI: base, Err: errors.Join(ErrLoad, err)}
		}
		return res.doc, nil
	}, frag)
}

// CompileDocument compiles an already parsed document. uri may be empty for
// an anonymous document; relative references are then taken as written.
func (c *Compiler) CompileDocument(ctx context.Context, doc any, uri string) (*Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	base, frag, _ := strings.Cut(uri, "#")
	doc = normalizeDocument(doc)
	return c.compileRoot(ctx, func() (*document, error) {
		if base == "" {
			return c.addDocument(anonymousKey(), doc, true), nil
		}
		if d, ok := c.docs[base]; ok {
			if !jsonvalue.Equal(d.root, doc) {
				return nil, &CompileError{Message: "A different document is already registered", URI: base, Err: ErrInvalidSchema}
			}
			return d, nil
		}
		return c.addDocument(base, doc, false), nil
	}, frag)
}

// CompileBytes parses data (JSON, or YAML when it does not look like JSON)
// and compiles it.
func (c *Compiler) CompileBytes(ctx context.Context, data []byte, uri string) (*Schema, error) {
	doc, err := ParseDocument(data, stripFragment(uri), c.opts.Parse)
	if err != nil {
		return nil, &CompileError{Message: "Unable to parse schema", URI: stripFragment(uri), Err: errors.Join(ErrInvalidSchema, err)}
	}
	return c.CompileDocument(ctx, doc, uri)
}

func (c *Compiler) compileRoot(ctx context.Context, open func() (*document, error), frag string) (s *Schema, err error) {
	c.created = c.created[:0]
	defer func() {
		if err != nil {
			c.rollback()
		}
	}()
	d, err := open()
	if err != nil {
		return nil, err
	}
	ptr := pointer.Root
	if frag != "" {
		if strings.HasPrefix(frag, "/") {
			if ptr, err = pointer.FromURIFragment(frag); err != nil {
				return nil, &CompileError{Message: "Invalid fragment #" + frag, URI: c.outBase(d.key), Err: ErrInvalidSchema}
			}
		} else {
			a, ok := c.anchors[d.key+"#"+frag]
			if !ok {
				a, ok = c.anchors[d.bases[""]+"#"+frag]
			}
			if !ok {
				return nil, &CompileError{Message: "Anchor not found #" + frag, URI: c.outBase(d.key), Err: ErrRefNotFound}
			}
			d, ptr = a.doc, a.ptr
		}
	}
	s, err = c.compileSchema(ctx, d, ptr, d.key)
	if err != nil {
		return nil, err
	}
	s.log = c.log
	return s, nil
}

// rollback drops every node created by a failed compile. Finished nodes go
// too: they may point at an unfinished ancestor.
func (c *Compiler) rollback() {
	for _, k := range c.created {
		delete(c.cache, k)
	}
	c.created = c.created[:0]
	c.descent = 0
}

// normalizeDocument accepts map-based trees as produced by encoding/json and
// converts them to the ordered model.
func normalizeDocument(doc any) any {
	switch doc.(type) {
	case map[string]any, []any, float64, int, int64:
		return jsonvalue.FromMap(doc)
	}
	return doc
}

// Compile is a convenience wrapper compiling one anonymous JSON or YAML
// schema document with default options.
func Compile(ctx context.Context, data []byte) (*Schema, error) {
	return NewCompiler(Options{}).CompileBytes(ctx, data, "")
}

// MustCompile is like Compile but panics on error.
func MustCompile(data string) *Schema {
	s, err := Compile(context.Background(), []byte(data))
	if err != nil {
		panic(err)
	}
	return s
}

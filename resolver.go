package jsoncover

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// document is one parsed schema document known to a Compiler.
type document struct {
	key     string // retrieval URI, or a urn:uuid key for anonymous documents
	root    any
	dialect Dialect
	// bases maps every object's pointer to the base URI in effect there,
	// its own $id included.
	bases map[string]string
}

// resource addresses a schema resource: a document root or a subschema that
// declares its own $id.
type resource struct {
	doc *document
	ptr pointer.Pointer
}

type cacheKey struct {
	base string
	ptr  string
}

// cacheEntry holds a compiled node. A node that is not ready is still being
// compiled; descent records how many instance-descending keywords were open
// when its compilation started.
type cacheEntry struct {
	schema  *Schema
	ready   bool
	descent int
}

// keywords whose values are data, not schemas. Indexing does not look inside.
var dataKeywords = map[string]bool{
	"enum": true, "const": true, "default": true, "examples": true, "example": true,
}

// addDocument registers root under key and indexes its $id resources and
// anchors.
func (c *Compiler) addDocument(key string, root any, anonymous bool) *document {
	d := &document{key: key, root: root, dialect: c.opts.DefaultDialect, bases: map[string]string{}}
	if obj, ok := root.(*jsonvalue.Object); ok {
		if v, ok := obj.Get("$schema"); ok {
			if s, ok := v.(string); ok {
				if dl, known := dialectOf(s); known {
					d.dialect = dl
				} else {
					c.log.Debug("unknown $schema, using default dialect", "uri", key, "schema", s)
				}
			}
		}
	}
	c.docs[key] = d
	if anonymous {
		c.anonymous[key] = true
	}
	c.ids[key] = resource{doc: d}
	c.index(d, root, pointer.Root, key)
	c.log.Debug("document registered", "uri", c.outBase(key), "dialect", d.dialect.String())
	return d
}

func (c *Compiler) index(d *document, v any, ptr pointer.Pointer, base string) {
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			c.index(d, e, ptr.Index(i), base)
		}
	case *jsonvalue.Object:
		if id, ok := t.Get("$id"); ok {
			if s, ok := id.(string); ok {
				if strings.HasPrefix(s, "#") {
					// draft-07 location-independent identifier
					c.anchors[base+s] = resource{doc: d, ptr: ptr}
				} else if nb := stripFragment(c.resolveURI(base, s)); nb != "" {
					base = nb
					if _, dup := c.ids[base]; !dup {
						c.ids[base] = resource{doc: d, ptr: ptr}
					}
				}
			}
		}
		d.bases[ptr.String()] = base
		if a, ok := t.Get("$anchor"); ok {
			if s, ok := a.(string); ok {
				c.anchors[base+"#"+s] = resource{doc: d, ptr: ptr}
			}
		}
		t.Range(func(k string, e any) bool {
			if !dataKeywords[k] && !strings.HasPrefix(k, "x-") {
				c.index(d, e, ptr.Child(k), base)
			}
			return true
		})
	}
}

// resolveURI resolves ref against base. Anonymous bases only resolve
// fragments; any other reference is taken as written.
func (c *Compiler) resolveURI(base, ref string) string {
	if base == "" || (c.anonymous[base] && !strings.HasPrefix(ref, "#")) {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// lookupResource finds the resource for an absolute URI, loading the
// document on first use.
func (c *Compiler) lookupResource(ctx context.Context, uri string) (resource, error) {
	if r, ok := c.ids[uri]; ok {
		return r, nil
	}
	if c.resources != nil {
		if doc, err := c.resources.Load(ctx, uri); err == nil {
			d := c.addDocument(uri, doc, false)
			return resource{doc: d}, nil
		}
	}
	c.log.Debug("loading document", "uri", uri)
	doc, err := c.loader.Load(ctx, uri)
	if err != nil {
		return resource{}, err
	}
	d := c.addDocument(uri, normalizeDocument(doc), false)
	return resource{doc: d}, nil
}

// resolveRef turns a $ref found in scope sc into the target document and
// pointer.
func (c *Compiler) resolveRef(sc *scope, ref string) (*document, pointer.Pointer, error) {
	full := c.resolveURI(sc.base, ref)
	uri, frag, _ := strings.Cut(full, "#")
	if uri == "" {
		uri = sc.base
	}
	res, err := c.lookupResource(sc.ctx, uri)
	if err != nil {
		return nil, pointer.Root, sc.failWrap("$ref", "Unable to load "+uri, errors.Join(ErrLoad, err))
	}
	target := res.ptr
	switch {
	case frag == "":
	case strings.HasPrefix(frag, "/") || strings.HasPrefix(frag, "%2F") || strings.HasPrefix(frag, "%2f"):
		p, err := pointer.FromURIFragment(frag)
		if err != nil {
			return nil, pointer.Root, sc.failWrap("$ref", "Invalid $ref pointer "+ref, ErrInvalidSchema)
		}
		target = res.ptr.Append(p.Tokens()...)
	default:
		a, ok := c.anchors[uri+"#"+frag]
		if !ok {
			return nil, pointer.Root, sc.failWrap("$ref", "$ref not found "+ref, ErrRefNotFound)
		}
		res, target = a, a.ptr
	}
	if !target.Exists(res.doc.root) {
		return nil, pointer.Root, sc.failWrap("$ref", "$ref not found "+ref, ErrRefNotFound)
	}
	return res.doc, target, nil
}

func (c *Compiler) outBase(base string) string {
	if c.anonymous[base] {
		return ""
	}
	return base
}

func anonymousKey() string { return "urn:uuid:" + uuid.NewString() }

var dialects = map[string]Dialect{
	"http://json-schema.org/draft/2019-09/schema":  Draft201909,
	"https://json-schema.org/draft/2019-09/schema": Draft201909,
	"http://json-schema.org/draft-07/schema":       Draft07,
	"https://json-schema.org/draft-07/schema":      Draft07,
}

func dialectOf(uri string) (Dialect, bool) {
	d, ok := dialects[strings.TrimSuffix(uri, "#")]
	return d, ok
}

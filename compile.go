package jsoncover

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ShubhamK2003/JSONCover/format"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// scope is the schema object being compiled.
type scope struct {
	ctx  context.Context
	c    *Compiler
	doc  *document
	obj  *jsonvalue.Object
	ptr  pointer.Pointer
	base string
	s    *Schema
}

func (sc *scope) node(key string) node {
	return node{baseURI: sc.c.outBase(sc.base), loc: sc.ptr.Child(key)}
}

func (sc *scope) fail(key, msg string) error { return sc.failWrap(key, msg, ErrInvalidSchema) }

func (sc *scope) failWrap(key, msg string, err error) error {
	p := sc.ptr
	if key != "" {
		p = p.Child(key)
	}
	return &CompileError{Message: msg, URI: sc.c.outBase(sc.base), Pointer: p.String(), Err: err}
}

// add appends v and declares one constraint per location in locs.
func (sc *scope) add(v Validator, locs ...pointer.Pointer) {
	sc.s.children = append(sc.s.children, v)
	for _, l := range locs {
		sc.s.constraints = append(sc.s.constraints, absoluteLocation(v.BaseURI(), l))
	}
}

// sub compiles the schema at the given tokens below this one.
func (sc *scope) sub(tokens ...string) (*Schema, error) {
	return sc.c.compileSchema(sc.ctx, sc.doc, sc.ptr.Append(tokens...), sc.base)
}

// descend compiles a subschema that applies to a child of the instance.
// References back to a schema under construction are only legal across such
// a step.
func (sc *scope) descend(tokens ...string) (*Schema, error) {
	sc.c.descent++
	defer func() { sc.c.descent-- }()
	return sc.sub(tokens...)
}

func (c *Compiler) compileSchema(ctx context.Context, d *document, ptr pointer.Pointer, parentBase string) (*Schema, error) {
	v, ok := ptr.Eval(d.root)
	if !ok {
		return nil, &CompileError{Message: "Schema not found", URI: c.outBase(parentBase), Pointer: ptr.String(), Err: ErrRefNotFound}
	}
	base, ok := d.bases[ptr.String()]
	if !ok {
		base = parentBase
	}
	switch t := v.(type) {
	case bool:
		kind := KindFalse
		if t {
			kind = KindTrue
		}
		return &Schema{kind: kind, baseURI: c.outBase(base), location: ptr, dialect: d.dialect}, nil
	case *jsonvalue.Object:
		return c.compileObject(ctx, d, t, ptr, base)
	}
	return nil, &CompileError{Message: "Schema is not boolean or object", URI: c.outBase(base), Pointer: ptr.String(), Err: ErrInvalidSchema}
}

func (c *Compiler) compileObject(ctx context.Context, d *document, obj *jsonvalue.Object, ptr pointer.Pointer, base string) (*Schema, error) {
	if idv, ok := obj.Get("$id"); ok {
		if _, ok := idv.(string); !ok {
			return nil, &CompileError{Message: "Invalid $id", URI: c.outBase(base), Pointer: ptr.Child("$id").String(), Err: ErrInvalidSchema}
		}
	}
	key := cacheKey{base: base, ptr: ptr.String()}
	if e, ok := c.cache[key]; ok {
		if e.ready {
			return e.schema, nil
		}
		if c.descent > e.descent {
			c.log.Debug("recursive reference", "location", absoluteLocation(c.outBase(base), ptr))
			return e.schema, nil
		}
		return nil, &CompileError{Message: "Recursive $ref", URI: c.outBase(base), Pointer: ptr.String(), Err: ErrRecursiveRef}
	}

	s := &Schema{kind: KindGeneral, baseURI: c.outBase(base), location: ptr, dialect: d.dialect}
	e := &cacheEntry{schema: s, descent: c.descent}
	c.cache[key] = e
	c.created = append(c.created, key)

	sc := &scope{ctx: ctx, c: c, doc: d, obj: obj, ptr: ptr, base: base, s: s}
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if err := sc.keyword(k, v); err != nil {
			return nil, err
		}
	}
	e.ready = true
	return s, nil
}

func (sc *scope) keyword(key string, v any) error {
	switch key {
	case "$schema":
		return sc.dialectKeyword(v)
	case "$id", "$comment", "examples", "example", "deprecated", "readOnly", "writeOnly",
		"contentMediaType", "contentEncoding", "$vocabulary",
		"then", "else", "minContains", "maxContains":
		return nil
	case "$anchor":
		if _, ok := v.(string); !ok {
			return sc.fail(key, "Anchor must be a string")
		}
		return nil
	case "$defs", "definitions":
		if _, ok := v.(*jsonvalue.Object); !ok {
			return sc.fail(key, "Must be object")
		}
		return nil
	case "title", "description":
		s, ok := v.(string)
		if !ok {
			return sc.fail(key, "Invalid "+key)
		}
		if key == "title" {
			sc.s.title = s
		} else {
			sc.s.description = s
		}
		return nil
	case "$ref":
		return sc.ref(v)
	case "default":
		sc.add(&Default{node: sc.node(key), Value: v})
		return nil
	case "allOf", "anyOf", "oneOf":
		return sc.combinator(key, v)
	case "not":
		target, err := sc.sub(key)
		if err != nil {
			return err
		}
		n := sc.node(key)
		sc.add(&Not{node: n, Schema: target}, n.loc)
		return nil
	case "if":
		return sc.ifThenElse(v)
	case "type":
		return sc.typeKeyword(v)
	case "enum":
		arr, ok := v.([]any)
		if !ok {
			return sc.fail(key, "enum must be array")
		}
		n := sc.node(key)
		sc.add(&Enum{node: n, Values: arr}, n.loc)
		return nil
	case "const":
		n := sc.node(key)
		sc.add(&Const{node: n, Value: v}, n.loc)
		return nil
	case "properties":
		return sc.properties(v)
	case "patternProperties":
		return sc.patternProperties(v)
	case "additionalProperties":
		return sc.additionalProperties()
	case "propertyNames":
		target, err := sc.descend(key)
		if err != nil {
			return err
		}
		n := sc.node(key)
		sc.add(&PropertyNames{node: n, Schema: target}, n.loc)
		return nil
	case "minProperties", "maxProperties":
		limit, err := sc.count(key, v)
		if err != nil {
			return err
		}
		n := sc.node(key)
		sc.add(&PropertyCount{node: n, Keyword: key, Limit: limit}, n.loc)
		return nil
	case "required":
		return sc.required(v)
	case "dependentRequired":
		return sc.dependentRequired(v)
	case "dependentSchemas":
		return sc.dependentSchemas(v)
	case "items":
		return sc.items(v)
	case "additionalItems":
		return sc.additionalItems()
	case "contains":
		return sc.contains()
	case "minItems", "maxItems":
		limit, err := sc.count(key, v)
		if err != nil {
			return err
		}
		n := sc.node(key)
		sc.add(&ItemCount{node: n, Keyword: key, Limit: limit}, n.loc)
		return nil
	case "uniqueItems":
		b, ok := v.(bool)
		if !ok {
			return sc.fail(key, "uniqueItems must be boolean")
		}
		if b {
			n := sc.node(key)
			sc.add(&UniqueItems{node: n}, n.loc)
		}
		return nil
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf":
		return sc.numberLimit(key, v)
	case "minLength", "maxLength":
		limit, err := sc.count(key, v)
		if err != nil {
			return err
		}
		n := sc.node(key)
		sc.add(&StringLength{node: n, Keyword: key, Limit: limit}, n.loc)
		return nil
	case "pattern":
		str, ok := v.(string)
		if !ok {
			return sc.fail(key, "pattern must be string")
		}
		re, err := sc.c.regex(str)
		if err != nil {
			return sc.fail(key, "Invalid regex "+str)
		}
		n := sc.node(key)
		sc.add(&Pattern{node: n, Pattern: str, re: re}, n.loc)
		return nil
	case "format":
		return sc.format(v)
	}
	if strings.HasPrefix(key, "x-") {
		sc.add(&Extension{node: sc.node(key), Name: key, Value: v})
		return nil
	}
	return sc.custom(key, v)
}

func (sc *scope) dialectKeyword(v any) error {
	s, ok := v.(string)
	if !ok {
		return sc.fail("$schema", "$schema must be string")
	}
	_, hasID := sc.obj.Get("$id")
	if !sc.ptr.IsRoot() && !hasID {
		return sc.fail("$schema", "May only appear in the root of the document")
	}
	if _, known := dialectOf(s); !known {
		sc.c.log.Debug("unrecognised $schema", "schema", s, "location", absoluteLocation(sc.c.outBase(sc.base), sc.ptr))
	}
	return nil
}

func (sc *scope) ref(v any) error {
	ref, ok := v.(string)
	if !ok {
		return sc.fail("$ref", "$ref must be string")
	}
	d, target, err := sc.c.resolveRef(sc, ref)
	if err != nil {
		return err
	}
	sc.c.log.Debug("resolved $ref", "ref", ref, "target", d.key+target.URIFragment())
	s, err := sc.c.compileSchema(sc.ctx, d, target, sc.base)
	if err != nil {
		return err
	}
	n := sc.node("$ref")
	sc.add(&Ref{node: n, Ref: ref, Target: s}, n.loc)
	return nil
}

func (sc *scope) combinator(key string, v any) error {
	arr, ok := v.([]any)
	if !ok {
		return sc.fail(key, "Compound must take array")
	}
	schemas := make([]*Schema, 0, len(arr))
	for i := range arr {
		s, err := sc.sub(key, itoa(i))
		if err != nil {
			return err
		}
		schemas = append(schemas, s)
	}
	n := sc.node(key)
	switch key {
	case "allOf":
		sc.add(&AllOf{node: n, Schemas: schemas}, n.loc)
	case "anyOf":
		sc.add(&AnyOf{node: n, Schemas: schemas}, n.loc)
	default:
		sc.add(&OneOf{node: n, Schemas: schemas}, n.loc)
	}
	return nil
}

func (sc *scope) ifThenElse(_ any) error {
	cond, err := sc.sub("if")
	if err != nil {
		return err
	}
	ite := &IfThenElse{node: sc.node("if"), If: cond}
	if sc.obj.Has("then") {
		if ite.Then, err = sc.sub("then"); err != nil {
			return err
		}
	}
	if sc.obj.Has("else") {
		if ite.Else, err = sc.sub("else"); err != nil {
			return err
		}
	}
	sc.add(ite, ite.loc)
	return nil
}

func (sc *scope) typeKeyword(v any) error {
	var names []string
	switch t := v.(type) {
	case string:
		names = []string{t}
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return sc.fail("type", "Invalid type")
			}
			names = append(names, s)
		}
	default:
		return sc.fail("type", "Invalid type")
	}
	for _, name := range names {
		if !jsonvalue.IsTypeName(name) {
			return sc.fail("type", "Invalid type "+name)
		}
	}
	n := sc.node("type")
	sc.add(&Type{node: n, Types: names}, n.loc)
	return nil
}

func (sc *scope) properties(v any) error {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return sc.fail("properties", "properties must be object")
	}
	props := make([]NamedSchema, 0, obj.Len())
	for _, name := range obj.Keys() {
		s, err := sc.descend("properties", name)
		if err != nil {
			return err
		}
		props = append(props, NamedSchema{Name: name, Schema: s})
	}
	sc.add(&Properties{node: sc.node("properties"), Properties: props})
	return nil
}

func (sc *scope) patternProperties(v any) error {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return sc.fail("patternProperties", "patternProperties must be object")
	}
	pats := make([]PatternSchema, 0, obj.Len())
	for _, p := range obj.Keys() {
		re, err := sc.c.regex(p)
		if err != nil {
			return sc.failWrap("patternProperties", "Invalid regex "+p, ErrInvalidSchema)
		}
		s, err := sc.descend("patternProperties", p)
		if err != nil {
			return err
		}
		pats = append(pats, PatternSchema{Pattern: p, Schema: s, re: re})
	}
	n := sc.node("patternProperties")
	sc.add(&PatternProperties{node: n, Patterns: pats}, n.loc)
	return nil
}

// additionalProperties reads its siblings straight from the schema object so
// keyword order does not matter.
func (sc *scope) additionalProperties() error {
	s, err := sc.descend("additionalProperties")
	if err != nil {
		return err
	}
	ap := &AdditionalProperties{node: sc.node("additionalProperties"), Schema: s, declared: map[string]struct{}{}}
	if pv, ok := sc.obj.Get("properties"); ok {
		if po, ok := pv.(*jsonvalue.Object); ok {
			for _, name := range po.Keys() {
				ap.declared[name] = struct{}{}
			}
		}
	}
	if pv, ok := sc.obj.Get("patternProperties"); ok {
		if po, ok := pv.(*jsonvalue.Object); ok {
			for _, p := range po.Keys() {
				re, err := sc.c.regex(p)
				if err != nil {
					return sc.failWrap("patternProperties", "Invalid regex "+p, ErrInvalidSchema)
				}
				ap.patterns = append(ap.patterns, re)
			}
		}
	}
	sc.add(ap, ap.loc)
	return nil
}

func (sc *scope) required(v any) error {
	names, err := sc.stringList("required", v)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	n := sc.node("required")
	locs := make([]pointer.Pointer, len(names))
	for i := range names {
		locs[i] = n.loc.Index(i)
	}
	sc.add(&Required{node: n, Names: names}, locs...)
	return nil
}

func (sc *scope) dependentRequired(v any) error {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return sc.fail("dependentRequired", "dependentRequired must be object")
	}
	for _, prop := range obj.Keys() {
		pv, _ := obj.Get(prop)
		names, err := sc.stringList("dependentRequired", pv)
		if err != nil {
			return err
		}
		n := node{baseURI: sc.c.outBase(sc.base), loc: sc.ptr.Append("dependentRequired", prop)}
		locs := make([]pointer.Pointer, len(names))
		for i := range names {
			locs[i] = n.loc.Index(i)
		}
		sc.add(&DependentRequired{node: n, Property: prop, Names: names}, locs...)
	}
	return nil
}

func (sc *scope) dependentSchemas(v any) error {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return sc.fail("dependentSchemas", "dependentSchemas must be object")
	}
	for _, prop := range obj.Keys() {
		s, err := sc.sub("dependentSchemas", prop)
		if err != nil {
			return err
		}
		n := node{baseURI: sc.c.outBase(sc.base), loc: sc.ptr.Append("dependentSchemas", prop)}
		sc.add(&DependentSchemas{node: n, Property: prop, Schema: s})
	}
	return nil
}

func (sc *scope) items(v any) error {
	n := sc.node("items")
	arr, ok := v.([]any)
	if !ok {
		s, err := sc.descend("items")
		if err != nil {
			return err
		}
		sc.add(&Items{node: n, Schema: s})
		return nil
	}
	schemas := make([]*Schema, 0, len(arr))
	for i := range arr {
		s, err := sc.descend("items", itoa(i))
		if err != nil {
			return err
		}
		schemas = append(schemas, s)
	}
	sc.add(&ItemsArray{node: n, Schemas: schemas})
	return nil
}

func (sc *scope) additionalItems() error {
	s, err := sc.descend("additionalItems")
	if err != nil {
		return err
	}
	tuple := -1
	if iv, ok := sc.obj.Get("items"); ok {
		if arr, ok := iv.([]any); ok {
			tuple = len(arr)
		}
	}
	n := sc.node("additionalItems")
	sc.add(&AdditionalItems{node: n, Schema: s, Tuple: tuple}, n.loc)
	return nil
}

func (sc *scope) contains() error {
	s, err := sc.descend("contains")
	if err != nil {
		return err
	}
	ct := &Contains{node: sc.node("contains"), Schema: s, Min: 1, Max: -1}
	if v, ok := sc.obj.Get("minContains"); ok {
		if ct.Min, err = sc.count("minContains", v); err != nil {
			return err
		}
	}
	if v, ok := sc.obj.Get("maxContains"); ok {
		if ct.Max, err = sc.count("maxContains", v); err != nil {
			return err
		}
	}
	sc.add(ct, ct.loc)
	return nil
}

func (sc *scope) numberLimit(key string, v any) error {
	r, ok := jsonvalue.Rat(v)
	if !ok {
		return sc.fail(key, "Must be number")
	}
	if key == "multipleOf" && r.Sign() <= 0 {
		return sc.fail(key, "multipleOf must be greater than 0")
	}
	limit, ok := v.(json.Number)
	if !ok {
		limit = json.Number(r.RatString())
	}
	n := sc.node(key)
	sc.add(&NumberLimit{node: n, Keyword: key, Limit: limit}, n.loc)
	return nil
}

func (sc *scope) format(v any) error {
	name, ok := v.(string)
	if !ok {
		return sc.fail("format", "format must be string")
	}
	var checker format.Checker
	if h := sc.c.opts.Formats; h != nil {
		checker = h(name)
	}
	if checker == nil {
		checker = format.Lookup(name)
	}
	if checker == nil {
		sc.c.log.Debug("unknown format, accepting all values", "format", name)
		checker = format.Null(name)
	}
	n := sc.node("format")
	sc.add(&Format{node: n, Name: name, checker: checker}, n.loc)
	return nil
}

func (sc *scope) custom(key string, v any) error {
	h := sc.c.opts.Keywords
	if h == nil {
		return nil
	}
	n := sc.node(key)
	check, err := h.Compile(KeywordContext{BaseURI: n.baseURI, Pointer: n.loc, Schema: sc.obj}, key, v)
	if err != nil {
		return sc.failWrap(key, fmt.Sprintf("Invalid %s: %v", key, err), ErrInvalidSchema)
	}
	if check != nil {
		sc.add(&Custom{node: n, Keyword: key, check: check}, n.loc)
	}
	return nil
}

// count reads a non-negative integer keyword value.
func (sc *scope) count(key string, v any) (int, error) {
	n, ok := jsonvalue.Int(v)
	if !ok || n < 0 {
		return 0, sc.fail(key, "Must be non-negative integer")
	}
	return n, nil
}

func (sc *scope) stringList(key string, v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, sc.fail(key, key+" must be array of strings")
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, sc.fail(key, key+" must be array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Compiler) regex(p string) (*regexp.Regexp, error) {
	if re, ok := c.regexes[p]; ok {
		return re, nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	c.regexes[p] = re
	return re, nil
}

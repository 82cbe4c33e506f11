package kubeopenapi

import (
	"encoding/base64"
	"math/big"
	"strconv"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/format"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// structural rewrites the OpenAPI and x-kubernetes-* vocabulary into plain
// JSON Schema keywords the compiler understands. Rewrites only add keywords;
// the x-kubernetes-* keys themselves stay and compile to Extension nodes.
type structural struct {
	d        *simpleDiag
	embedded bool
}

var subschemaKeys = []string{"additionalProperties", "not", "items"}
var subschemaMaps = []string{"properties", "patternProperties"}
var subschemaLists = []string{"allOf", "anyOf", "oneOf", "items"}

func (st structural) schema(o *jsonvalue.Object, at string) {
	st.nullable(o)
	st.intOrString(o)
	st.listType(o, at)
	if st.embedded {
		st.embeddedResource(o)
	}

	for _, k := range subschemaKeys {
		if sub, ok := lookup(o, k).(*jsonvalue.Object); ok {
			st.schema(sub, at+"/"+k)
		}
	}
	for _, k := range subschemaMaps {
		if m, ok := lookup(o, k).(*jsonvalue.Object); ok {
			m.Range(func(name string, v any) bool {
				if sub, ok := v.(*jsonvalue.Object); ok {
					st.schema(sub, at+"/"+k+"/"+pointer.Escape(name))
				}
				return true
			})
		}
	}
	for _, k := range subschemaLists {
		if arr, ok := lookup(o, k).([]any); ok {
			for i, v := range arr {
				if sub, ok := v.(*jsonvalue.Object); ok {
					st.schema(sub, at+"/"+k+"/"+strconv.Itoa(i))
				}
			}
		}
	}
}

// nullable: true admits null next to the declared type and enum.
func (st structural) nullable(o *jsonvalue.Object) {
	if lookup(o, "nullable") != true {
		return
	}
	switch t := lookup(o, "type").(type) {
	case string:
		if t != "null" {
			o.Set("type", []any{t, "null"})
		}
	case []any:
		if !containsValue(t, "null") {
			o.Set("type", append(t, "null"))
		}
	}
	if enum, ok := lookup(o, "enum").([]any); ok && !containsValue(enum, nil) {
		o.Set("enum", append(enum, nil))
	}
}

// intOrString adds the integer-or-string union when the CRD did not spell it
// out itself.
func (st structural) intOrString(o *jsonvalue.Object) {
	if lookup(o, "x-kubernetes-int-or-string") != true || o.Has("type") || o.Has("anyOf") {
		return
	}
	integer := jsonvalue.NewObject(1)
	integer.Set("type", "integer")
	str := jsonvalue.NewObject(1)
	str.Set("type", "string")
	o.Set("anyOf", []any{integer, str})
}

func (st structural) listType(o *jsonvalue.Object, at string) {
	switch lookup(o, "x-kubernetes-list-type") {
	case "set":
		if !o.Has("uniqueItems") {
			o.Set("uniqueItems", true)
		}
	case "map":
		keys, _ := lookup(o, "x-kubernetes-list-map-keys").([]any)
		if len(keys) == 0 {
			st.d.warnf("%s: list-type map without x-kubernetes-list-map-keys", orRoot(at))
			return
		}
		if items, ok := lookup(o, "items").(*jsonvalue.Object); ok {
			addRequired(items, keys...)
		}
		st.d.warnf("%s: list-map key uniqueness is not enforced", orRoot(at))
	}
}

// embeddedResource requires apiVersion and kind on embedded objects.
func (st structural) embeddedResource(o *jsonvalue.Object) {
	if lookup(o, "x-kubernetes-embedded-resource") != true {
		return
	}
	props, ok := lookup(o, "properties").(*jsonvalue.Object)
	if !ok {
		props = jsonvalue.NewObject(2)
		o.Set("properties", props)
	}
	for _, k := range []string{"apiVersion", "kind"} {
		if !props.Has(k) {
			s := jsonvalue.NewObject(1)
			s.Set("type", "string")
			props.Set(k, s)
		}
	}
	addRequired(o, "apiVersion", "kind")
}

func addRequired(o *jsonvalue.Object, names ...any) {
	req, _ := lookup(o, "required").([]any)
	for _, n := range names {
		if !containsValue(req, n) {
			req = append(req, n)
		}
	}
	o.Set("required", req)
}

func containsValue(list []any, v any) bool {
	for _, e := range list {
		if jsonvalue.Equal(e, v) {
			return true
		}
	}
	return false
}

func orRoot(at string) string {
	if at == "" {
		return "/"
	}
	return at
}

var (
	minInt32 = big.NewRat(-1<<31, 1)
	maxInt32 = big.NewRat(1<<31-1, 1)
	minInt64 = big.NewRat(-1<<63, 1)
	maxInt64 = big.NewRat(1<<63-1, 1)
)

// intRange checks the OpenAPI int32 and int64 formats.
type intRange struct {
	name     string
	min, max *big.Rat
}

func (r intRange) Name() string { return r.name }

func (r intRange) Check(v any) bool {
	n, ok := jsonvalue.Rat(v)
	if !ok || !n.IsInt() {
		return true
	}
	return n.Cmp(r.min) >= 0 && n.Cmp(r.max) <= 0
}

func openAPIFormat(name string) format.Checker {
	switch name {
	case "int32":
		return intRange{name, minInt32, maxInt32}
	case "int64":
		return intRange{name, minInt64, maxInt64}
	case "byte":
		return format.StringFunc{FormatName: name, Fn: func(s string) bool {
			_, err := base64.StdEncoding.DecodeString(s)
			return err == nil
		}}
	}
	return nil
}

// withOpenAPIFormats consults the caller's handler first.
func withOpenAPIFormats(user jsoncover.FormatHandler) jsoncover.FormatHandler {
	return func(name string) format.Checker {
		if user != nil {
			if c := user(name); c != nil {
				return c
			}
		}
		return openAPIFormat(name)
	}
}

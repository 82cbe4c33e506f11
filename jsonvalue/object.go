// Package jsonvalue is the in-memory JSON model shared by the compiler and
// the evaluator. Objects keep their keys in document order, numbers are kept
// as json.Number text so no precision is lost before comparison.
package jsonvalue

import (
	"bytes"
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Object is a JSON object that remembers insertion order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object with room for n members.
func NewObject(n int) *Object {
	return &Object{keys: make([]string, 0, n), values: make(map[string]any, n)}
}

// Set adds or replaces a member. Replacing keeps the original position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the member names in document order. The slice must not be
// modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Range calls fn for every member in order until fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// MarshalJSON renders members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FromMap converts a map[string]any tree into ordered objects. Map keys have
// no order, so members are sorted by the encoder's key order.
func FromMap(v any) any {
	switch t := v.(type) {
	case map[string]any:
		b, err := gojson.Marshal(t)
		if err != nil {
			return nil
		}
		out, err := Decode(b)
		if err != nil {
			return nil
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i, e := range t {
			arr[i] = FromMap(e)
		}
		return arr
	case float64:
		return json.Number(formatFloat(t))
	case int:
		return json.Number(formatInt(int64(t)))
	case int64:
		return json.Number(formatInt(t))
	default:
		return v
	}
}

// Marshal renders any value of the model as compact JSON.
func Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case *Object:
		return t.MarshalJSON()
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := Marshal(e)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case json.Number:
		return []byte(t), nil
	default:
		return gojson.Marshal(t)
	}
}

package jsonvalue

import (
	"encoding/json"
	"math/big"
	"strconv"
	"unicode/utf8"
)

// JSON type names as used by the "type" keyword.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeInteger = "integer"
)

// IsTypeName reports whether name is one of the seven JSON Schema type names.
func IsTypeName(name string) bool {
	switch name {
	case TypeNull, TypeBoolean, TypeObject, TypeArray, TypeNumber, TypeString, TypeInteger:
		return true
	}
	return false
}

// TypeOf returns the JSON type of v. Numbers always report "number"; use
// IsInteger for the integer refinement.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case *Object, map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	case json.Number, float64, int, int64:
		return TypeNumber
	case string:
		return TypeString
	}
	return ""
}

// HasType reports whether v satisfies the named type. A number with no
// fractional part is an integer whatever its spelling (1, 1.0, 1e2).
func HasType(v any, name string) bool {
	t := TypeOf(v)
	if name == TypeInteger {
		return t == TypeNumber && IsInteger(v)
	}
	return t == name
}

// Rat returns the exact value of a numeric v.
func Rat(v any) (*big.Rat, bool) {
	r := new(big.Rat)
	switch n := v.(type) {
	case json.Number:
		if _, ok := r.SetString(string(n)); !ok {
			return nil, false
		}
		return r, true
	case float64:
		if r.SetFloat64(n) == nil {
			return nil, false
		}
		return r, true
	case int:
		return r.SetInt64(int64(n)), true
	case int64:
		return r.SetInt64(n), true
	}
	return nil, false
}

// IsInteger reports whether v is a number with no fractional part.
func IsInteger(v any) bool {
	r, ok := Rat(v)
	return ok && r.IsInt()
}

// Int returns v as an int when it is an integral number that fits.
func Int(v any) (int, bool) {
	r, ok := Rat(v)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	n := r.Num().Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

// StringLength counts code points, not bytes.
func StringLength(s string) int { return utf8.RuneCountInString(s) }

// Equal is JSON value equality: numbers compare by value, objects ignore
// member order, everything else compares structurally with type sensitivity.
func Equal(a, b any) bool {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta {
	case TypeNull:
		return true
	case TypeBoolean:
		return a.(bool) == b.(bool)
	case TypeString:
		return a.(string) == b.(string)
	case TypeNumber:
		ra, okA := Rat(a)
		rb, okB := Rat(b)
		return okA && okB && ra.Cmp(rb) == 0
	case TypeArray:
		xa, xb := a.([]any), b.([]any)
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		oa, ob := asObject(a), asObject(b)
		if oa.Len() != ob.Len() {
			return false
		}
		for _, k := range oa.Keys() {
			vb, ok := ob.Get(k)
			if !ok {
				return false
			}
			va, _ := oa.Get(k)
			if !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

func asObject(v any) *Object {
	switch o := v.(type) {
	case *Object:
		return o
	case map[string]any:
		if c, ok := FromMap(o).(*Object); ok {
			return c
		}
	}
	return nil
}

// Display renders v compactly for error messages. Long renderings are cut.
func Display(v any) string {
	const maxLen = 60
	b, err := Marshal(v)
	if err != nil {
		return "?"
	}
	s := string(b)
	if utf8.RuneCountInString(s) > maxLen {
		r := []rune(s)
		s = string(r[:maxLen]) + "..."
	}
	return s
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
func formatInt(i int64) string     { return strconv.FormatInt(i, 10) }

package jsoncover

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ShubhamK2003/JSONCover/i18n"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// evaluation runs a compiled tree over one instance. With collect unset it
// stops at the first failure and records nothing.
type evaluation struct {
	collect bool
	errs    []ErrorEntry
}

// frame maps schema pointers onto the evaluation path from the root, which
// differs from the schema pointer once a $ref has been followed.
type frame struct {
	rel  pointer.Pointer
	base pointer.Pointer
}

func (f frame) keyword(p pointer.Pointer) pointer.Pointer {
	toks, ok := p.Rel(f.base)
	if !ok {
		return p
	}
	return f.rel.Append(toks...)
}

func (e *evaluation) report(f frame, base string, loc, at pointer.Pointer, code, msg string) {
	if !e.collect {
		return
	}
	e.errs = append(e.errs, ErrorEntry{
		Error:                   msg,
		KeywordLocation:         f.keyword(loc).URIFragment(),
		AbsoluteKeywordLocation: absoluteLocation(base, loc),
		InstanceLocation:        at.URIFragment(),
		Code:                    code,
	})
}

func (e *evaluation) fail(f frame, v Validator, at pointer.Pointer, code, msg string) bool {
	e.report(f, v.BaseURI(), v.Location(), at, code, msg)
	return false
}

// summarize puts the generic summary entry in front of the details that
// were appended since mark.
func (e *evaluation) summarize(mark int, f frame, base string, loc, at pointer.Pointer) {
	if !e.collect {
		return
	}
	e.report(f, base, loc, at, CodeSubschema, i18n.T(CodeSubschema, nil))
	last := e.errs[len(e.errs)-1]
	e.errs = slices.Insert(e.errs[:len(e.errs)-1], mark, last)
}

func matches(s *Schema, f frame, inst any, at pointer.Pointer) bool {
	var probe evaluation
	return probe.schema(s, f, inst, at)
}

func (e *evaluation) schema(s *Schema, f frame, inst any, at pointer.Pointer) bool {
	switch s.kind {
	case KindTrue:
		return true
	case KindFalse:
		e.report(f, s.baseURI, s.location, at, CodeFalseSchema, i18n.T(CodeFalseSchema, nil))
		return false
	}
	mark := len(e.errs)
	ok := true
	for _, v := range s.children {
		if !e.validator(v, f, inst, at) {
			ok = false
			if !e.collect {
				return false
			}
		}
	}
	if !ok {
		e.summarize(mark, f, s.baseURI, s.location, at)
	}
	return ok
}

func (e *evaluation) validator(v Validator, f frame, inst any, at pointer.Pointer) bool {
	switch v := v.(type) {
	case *AllOf:
		ok := true
		for _, s := range v.Schemas {
			if !e.schema(s, f, inst, at) {
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *AnyOf:
		for _, s := range v.Schemas {
			if matches(s, f, inst, at) {
				return true
			}
		}
		return e.fail(f, v, at, CodeSubschema, i18n.T(CodeSubschema, nil))
	case *OneOf:
		n := 0
		for _, s := range v.Schemas {
			if matches(s, f, inst, at) {
				n++
			}
		}
		switch {
		case n == 1:
			return true
		case n == 0:
			return e.fail(f, v, at, CodeSubschema, i18n.T(CodeSubschema, nil))
		}
		return e.fail(f, v, at, CodeOneOf, i18n.T(CodeOneOf, map[string]string{"value": strconv.Itoa(n)}))
	case *Not:
		if matches(v.Schema, f, inst, at) {
			return e.fail(f, v, at, CodeNot, i18n.T(CodeNot, nil))
		}
		return true
	case *IfThenElse:
		if matches(v.If, f, inst, at) {
			return v.Then == nil || e.schema(v.Then, f, inst, at)
		}
		return v.Else == nil || e.schema(v.Else, f, inst, at)
	case *Ref:
		inner := frame{rel: f.keyword(v.loc), base: v.Target.location}
		return e.schema(v.Target, inner, inst, at)
	case *Properties:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		ok := true
		for _, p := range v.Properties {
			pv, has := obj.Get(p.Name)
			if has && !e.schema(p.Schema, f, pv, at.Child(p.Name)) {
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *PatternProperties:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		ok := true
		for _, name := range obj.Keys() {
			pv, _ := obj.Get(name)
			for _, p := range v.Patterns {
				if p.re.MatchString(name) && !e.schema(p.Schema, f, pv, at.Child(name)) {
					ok = false
					if !e.collect {
						return false
					}
				}
			}
		}
		return ok
	case *AdditionalProperties:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		ok := true
		for _, name := range obj.Keys() {
			if v.covers(name) {
				continue
			}
			pv, _ := obj.Get(name)
			if !e.schema(v.Schema, f, pv, at.Child(name)) {
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *PropertyNames:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		ok := true
		for _, name := range obj.Keys() {
			if !e.schema(v.Schema, f, name, at.Child(name)) {
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *Items:
		return e.elements(v.Schema, nil, 0, f, inst, at)
	case *ItemsArray:
		return e.elements(nil, v.Schemas, 0, f, inst, at)
	case *AdditionalItems:
		if v.Tuple < 0 {
			return true
		}
		return e.elements(v.Schema, nil, v.Tuple, f, inst, at)
	case *Contains:
		arr, isArr := inst.([]any)
		if !isArr {
			return true
		}
		n := 0
		for i, item := range arr {
			if matches(v.Schema, f, item, at.Index(i)) {
				n++
			}
		}
		switch {
		case n < v.Min && n == 0 && v.Min == 1:
			return e.fail(f, v, at, CodeContains, i18n.T("contains", nil))
		case n < v.Min:
			return e.fail(f, v, at, CodeContains, i18n.T("contains.min", limitData("minContains", v.Min, n)))
		case v.Max >= 0 && n > v.Max:
			return e.fail(f, v, at, CodeContains, i18n.T("contains.max", limitData("maxContains", v.Max, n)))
		}
		return true
	case *Required:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		ok := true
		for i, name := range v.Names {
			if !obj.Has(name) {
				e.report(f, v.baseURI, v.loc.Index(i), at, CodeRequired, i18n.T(CodeRequired, map[string]string{"property": name}))
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *DependentRequired:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj || !obj.Has(v.Property) {
			return true
		}
		ok := true
		for i, name := range v.Names {
			if !obj.Has(name) {
				e.report(f, v.baseURI, v.loc.Index(i), at, CodeDependency,
					i18n.T(CodeDependency, map[string]string{"property": name, "dependent": v.Property}))
				ok = false
				if !e.collect {
					return false
				}
			}
		}
		return ok
	case *DependentSchemas:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj || !obj.Has(v.Property) {
			return true
		}
		return e.schema(v.Schema, f, inst, at)
	case *PropertyCount:
		obj, isObj := inst.(*jsonvalue.Object)
		if !isObj {
			return true
		}
		return e.count(f, v, at, "props.", v.Keyword, v.Limit, obj.Len())
	case *ItemCount:
		arr, isArr := inst.([]any)
		if !isArr {
			return true
		}
		return e.count(f, v, at, "items.", v.Keyword, v.Limit, len(arr))
	case *UniqueItems:
		arr, isArr := inst.([]any)
		if !isArr {
			return true
		}
		for i := 1; i < len(arr); i++ {
			for j := 0; j < i; j++ {
				if jsonvalue.Equal(arr[i], arr[j]) {
					return e.fail(f, v, at, CodeUniqueness, i18n.T(CodeUniqueness, nil))
				}
			}
		}
		return true
	case *Type:
		for _, t := range v.Types {
			if jsonvalue.HasType(inst, t) {
				return true
			}
		}
		return e.fail(f, v, at, CodeInvalidType, i18n.T(CodeInvalidType, map[string]string{"expected": strings.Join(v.Types, " or ")}))
	case *Enum:
		for _, allowed := range v.Values {
			if jsonvalue.Equal(inst, allowed) {
				return true
			}
		}
		return e.fail(f, v, at, CodeInvalidEnum, i18n.T(CodeInvalidEnum, map[string]string{"value": jsonvalue.Display(inst)}))
	case *Const:
		if jsonvalue.Equal(inst, v.Value) {
			return true
		}
		return e.fail(f, v, at, CodeConst, i18n.T(CodeConst, map[string]string{"value": jsonvalue.Display(inst)}))
	case *Pattern:
		s, isStr := inst.(string)
		if !isStr || v.re.MatchString(s) {
			return true
		}
		return e.fail(f, v, at, CodePattern, i18n.T(CodePattern, map[string]string{"pattern": v.Pattern, "value": jsonvalue.Display(s)}))
	case *Format:
		if v.checker.Check(inst) {
			return true
		}
		return e.fail(f, v, at, CodeInvalidFormat, i18n.T(CodeInvalidFormat, map[string]string{"format": v.Name, "value": jsonvalue.Display(inst)}))
	case *NumberLimit:
		return e.number(f, v, inst, at)
	case *StringLength:
		s, isStr := inst.(string)
		if !isStr {
			return true
		}
		n := utf8.RuneCountInString(s)
		if v.Keyword == "minLength" && n < v.Limit {
			return e.fail(f, v, at, CodeTooShort, i18n.T(CodeTooShort, limitData(v.Keyword, v.Limit, n)))
		}
		if v.Keyword == "maxLength" && n > v.Limit {
			return e.fail(f, v, at, CodeTooLong, i18n.T(CodeTooLong, limitData(v.Keyword, v.Limit, n)))
		}
		return true
	case *Custom:
		if msg := v.check(inst); msg != "" {
			return e.fail(f, v, at, CodeCustom, i18n.T(CodeCustom, map[string]string{"keyword": v.Keyword, "value": msg}))
		}
		return true
	case *Default, *Extension:
		return true
	}
	return true
}

// elements applies one or positional schemas to array elements starting at
// from.
func (e *evaluation) elements(one *Schema, tuple []*Schema, from int, f frame, inst any, at pointer.Pointer) bool {
	arr, isArr := inst.([]any)
	if !isArr {
		return true
	}
	ok := true
	for i := from; i < len(arr); i++ {
		s := one
		if tuple != nil {
			if i >= len(tuple) {
				break
			}
			s = tuple[i]
		}
		if !e.schema(s, f, arr[i], at.Index(i)) {
			ok = false
			if !e.collect {
				return false
			}
		}
	}
	return ok
}

func (e *evaluation) count(f frame, v Validator, at pointer.Pointer, prefix, keyword string, limit, n int) bool {
	if strings.HasPrefix(keyword, "min") && n < limit {
		return e.fail(f, v, at, CodeTooFew, i18n.T(prefix+CodeTooFew, limitData(keyword, limit, n)))
	}
	if strings.HasPrefix(keyword, "max") && n > limit {
		return e.fail(f, v, at, CodeTooMany, i18n.T(prefix+CodeTooMany, limitData(keyword, limit, n)))
	}
	return true
}

func (e *evaluation) number(f frame, v *NumberLimit, inst any, at pointer.Pointer) bool {
	if jsonvalue.TypeOf(inst) != jsonvalue.TypeNumber {
		return true
	}
	r, ok := jsonvalue.Rat(inst)
	limit, lok := jsonvalue.Rat(v.Limit)
	if !ok || !lok {
		return true
	}
	data := map[string]string{"keyword": v.Keyword, "limit": string(v.Limit), "value": jsonvalue.Display(inst)}
	c := r.Cmp(limit)
	switch v.Keyword {
	case "minimum":
		if c < 0 {
			return e.fail(f, v, at, CodeTooSmall, i18n.T(CodeTooSmall, data))
		}
	case "exclusiveMinimum":
		if c <= 0 {
			return e.fail(f, v, at, CodeTooSmall, i18n.T(CodeTooSmall, data))
		}
	case "maximum":
		if c > 0 {
			return e.fail(f, v, at, CodeTooBig, i18n.T(CodeTooBig, data))
		}
	case "exclusiveMaximum":
		if c >= 0 {
			return e.fail(f, v, at, CodeTooBig, i18n.T(CodeTooBig, data))
		}
	case "multipleOf":
		if !r.Quo(r, limit).IsInt() {
			return e.fail(f, v, at, CodeNotMultiple, i18n.T(CodeNotMultiple, data))
		}
	}
	return true
}

func limitData(keyword string, limit, was int) map[string]string {
	return map[string]string{"keyword": keyword, "limit": strconv.Itoa(limit), "value": strconv.Itoa(was)}
}

func (ap *AdditionalProperties) covers(name string) bool {
	if _, ok := ap.declared[name]; ok {
		return true
	}
	for _, re := range ap.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

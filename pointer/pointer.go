// Package pointer implements immutable RFC 6901 JSON Pointers used to address
// both schema keywords and instance values.
package pointer

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ShubhamK2003/JSONCover/jsonvalue"
)

// ErrSyntax is returned when a pointer string is malformed.
var ErrSyntax = errors.New("invalid JSON pointer")

// Pointer is a sequence of unescaped reference tokens. The zero value is the
// root pointer. Pointers are values: Child and Append never modify the
// receiver.
type Pointer struct {
	tokens []string
}

// Root is the pointer to the whole document.
var Root = Pointer{}

// New builds a pointer from unescaped tokens.
func New(tokens ...string) Pointer {
	if len(tokens) == 0 {
		return Root
	}
	return Pointer{tokens: append([]string(nil), tokens...)}
}

// Parse parses the string form ("" or "/a/b~1c").
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Root, nil
	}
	if s[0] != '/' {
		return Root, ErrSyntax
	}
	parts := strings.Split(s[1:], "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		t, err := unescape(p)
		if err != nil {
			return Root, err
		}
		tokens = append(tokens, t)
	}
	return Pointer{tokens: tokens}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromURIFragment parses a URI fragment such as "#/a/b%20c". The leading '#'
// is optional.
func FromURIFragment(frag string) (Pointer, error) {
	frag = strings.TrimPrefix(frag, "#")
	dec, err := url.PathUnescape(frag)
	if err != nil {
		return Root, ErrSyntax
	}
	return Parse(dec)
}

func unescape(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(tok) {
			return "", ErrSyntax
		}
		switch tok[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", ErrSyntax
		}
		i++
	}
	return b.String(), nil
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// Escape escapes a single reference token.
func Escape(tok string) string { return escaper.Replace(tok) }

// Child returns a new pointer with tok appended.
func (p Pointer) Child(tok string) Pointer {
	out := make([]string, len(p.tokens)+1)
	copy(out, p.tokens)
	out[len(p.tokens)] = tok
	return Pointer{tokens: out}
}

// Index returns a new pointer with an array index appended.
func (p Pointer) Index(i int) Pointer { return p.Child(strconv.Itoa(i)) }

// Append returns a new pointer with all toks appended.
func (p Pointer) Append(toks ...string) Pointer {
	if len(toks) == 0 {
		return p
	}
	out := make([]string, 0, len(p.tokens)+len(toks))
	out = append(out, p.tokens...)
	out = append(out, toks...)
	return Pointer{tokens: out}
}

// Parent returns the pointer without its last token. The parent of the root
// is the root.
func (p Pointer) Parent() Pointer {
	if len(p.tokens) == 0 {
		return p
	}
	return Pointer{tokens: p.tokens[:len(p.tokens)-1:len(p.tokens)-1]}
}

// Last returns the final token, or "" for the root.
func (p Pointer) Last() string {
	if len(p.tokens) == 0 {
		return ""
	}
	return p.tokens[len(p.tokens)-1]
}

// Tokens returns a copy of the unescaped tokens.
func (p Pointer) Tokens() []string { return append([]string(nil), p.tokens...) }

func (p Pointer) Len() int     { return len(p.tokens) }
func (p Pointer) IsRoot() bool { return len(p.tokens) == 0 }

// HasPrefix reports whether q is an ancestor of (or equal to) p.
func (p Pointer) HasPrefix(q Pointer) bool {
	if len(q.tokens) > len(p.tokens) {
		return false
	}
	for i, t := range q.tokens {
		if p.tokens[i] != t {
			return false
		}
	}
	return true
}

// Rel returns the tokens of p below base. ok is false when base is not a
// prefix of p.
func (p Pointer) Rel(base Pointer) (toks []string, ok bool) {
	if !p.HasPrefix(base) {
		return nil, false
	}
	return p.tokens[len(base.tokens):], true
}

func (p Pointer) Equal(q Pointer) bool {
	return len(p.tokens) == len(q.tokens) && p.HasPrefix(q)
}

// String renders the RFC 6901 string form.
func (p Pointer) String() string {
	if len(p.tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// URIFragment renders the pointer as a URI fragment including the leading '#'.
func (p Pointer) URIFragment() string {
	var b strings.Builder
	b.WriteByte('#')
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(fragmentEscape(Escape(t)))
	}
	return b.String()
}

// fragmentEscape percent-encodes bytes not allowed in a URI fragment.
func fragmentEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if fragmentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func fragmentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', ':', '@', '/', '?':
		return true
	}
	return false
}

// Eval resolves p against doc. Objects may be *jsonvalue.Object or
// map[string]any; arrays are []any.
func (p Pointer) Eval(doc any) (any, bool) {
	cur := doc
	for _, t := range p.tokens {
		switch c := cur.(type) {
		case *jsonvalue.Object:
			v, ok := c.Get(t)
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := c[t]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := arrayIndex(t, len(c))
			if !ok {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Exists reports whether p addresses a value in doc.
func (p Pointer) Exists(doc any) bool {
	_, ok := p.Eval(doc)
	return ok
}

func arrayIndex(t string, n int) (int, bool) {
	if t == "" || (len(t) > 1 && t[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(t); i++ {
		if t[i] < '0' || t[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(t)
	if err != nil || i >= n {
		return 0, false
	}
	return i, true
}

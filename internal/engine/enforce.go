package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness selects what happens when an object repeats a key.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a document problem found while streaming.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError stops decoding at a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.Message }

// EnforceOptions configures WrapWithEnforcement. Zero limits are off.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue, fatal or not.
	IssueSink func(SimpleIssue)
	// FailFast makes warnings fatal too.
	FailFast bool
}

// WrapWithEnforcement returns a TokenSource that checks duplicate keys,
// nesting depth and consumed bytes as the tokens go by.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcer{inner: inner, opt: opt}
}

// container is one open object or array.
type container struct {
	path   string
	object bool
	keys   map[string]struct{}
	key    string // last key read (objects)
	next   int    // next element index (arrays)
}

type enforcer struct {
	inner TokenSource
	opt   EnforceOptions
	open  []container
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	var at string
	switch tok.Kind {
	case KindKey:
		if len(e.open) == 0 {
			return tok, nil
		}
		top := &e.open[len(e.open)-1]
		at = child(top.path, tok.String)
		if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
			si := SimpleIssue{Code: "duplicate_key", Path: at, Message: "key '" + tok.String + "' duplicated"}
			if err := e.report(si, e.opt.OnDuplicate == DupError || e.opt.FailFast); err != nil {
				return Token{}, err
			}
		}
		top.keys[tok.String] = struct{}{}
		top.key = tok.String
	case KindBeginObject, KindBeginArray:
		at = e.valuePath()
		c := container{path: at, object: tok.Kind == KindBeginObject}
		if c.object {
			c.keys = map[string]struct{}{}
		}
		e.open = append(e.open, c)
		if e.opt.MaxDepth > 0 && len(e.open) > e.opt.MaxDepth {
			return Token{}, e.report(SimpleIssue{Code: "parse_error", Path: orRoot(at), Message: "max depth exceeded"}, true)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.open); n > 0 {
			at = e.open[n-1].path
			e.open = e.open[:n-1]
		}
	default:
		at = e.valuePath()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.inner.Location(); off > e.opt.MaxBytes {
			return Token{}, e.report(SimpleIssue{Code: "truncated", Path: orRoot(at), Message: "max bytes exceeded"}, true)
		}
	}
	return tok, nil
}

// valuePath is the pointer of the value that starts now. Inside an array it
// consumes the next index.
func (e *enforcer) valuePath() string {
	if len(e.open) == 0 {
		return ""
	}
	top := &e.open[len(e.open)-1]
	if top.object {
		return child(top.path, top.key)
	}
	p := child(top.path, strconv.Itoa(top.next))
	top.next++
	return p
}

func (e *enforcer) report(si SimpleIssue, fatal bool) error {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
	if fatal {
		return IssueError{si}
	}
	return nil
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func child(base, token string) string { return base + "/" + tokenEscaper.Replace(token) }

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

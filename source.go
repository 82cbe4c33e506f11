package jsoncover

import (
	"bytes"
	"errors"
	"io"
	"sync"

	eng "github.com/ShubhamK2003/JSONCover/internal/engine"
	gojsonsrc "github.com/ShubhamK2003/JSONCover/source/gojson"
	jsonsrc "github.com/ShubhamK2003/JSONCover/source/json"
)

// TokenKind enumerates JSON token kinds.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; never converted to float64.
	Bool   bool
	Offset int64
}

// Source is a stream of JSON tokens.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The
// default implementation is based on goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver{}) }

// GoJSONDriver returns the driver backed by goccy/go-json.
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns the driver backed by encoding/json. It reports byte
// offsets, which makes MaxBytes enforcement precise for streamed input.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return engineSource{gojsonsrc.NewReader(r)} }
func (goJSONDriver) NewBytes(b []byte) Source     { return engineSource{gojsonsrc.NewBytes(b)} }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return engineSource{jsonsrc.NewReader(r)} }
func (stdJSONDriver) NewBytes(b []byte) Source     { return engineSource{jsonsrc.NewBytes(b)} }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source using the current driver.
func JSONReader(r io.Reader) Source { return getJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source using the current driver.
func JSONBytes(b []byte) Source { return getJSONDriver().NewBytes(b) }

// ParseJSON decodes one JSON document into the ordered value model used by
// the compiler and the evaluator.
func ParseJSON(data []byte, opt ParseOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, Issues{{Path: "/", Code: CodeTruncated, Message: "max bytes exceeded", Offset: opt.MaxBytes}}
	}
	return ParseSource(JSONBytes(data), opt)
}

// ParseJSONReader is ParseJSON for streamed input.
func ParseJSONReader(r io.Reader, opt ParseOpt) (any, error) {
	return ParseSource(JSONReader(r), opt)
}

// ParseSource decodes a complete value from src, enforcing opt.
func ParseSource(src Source, opt ParseOpt) (any, error) {
	var issues Issues
	inner := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink: func(si eng.SimpleIssue) {
			issues = append(issues, Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: src.Location()})
		},
	})
	v, err := eng.DecodeValue(inner)
	if err != nil {
		var ie eng.IssueError
		if errors.As(err, &ie) {
			return nil, issues
		}
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Offset: src.Location(), Cause: err}}
	}
	return v, nil
}

// looksLikeJSON is a cheap sniff used when a document's media type is unknown.
func looksLikeJSON(data []byte) bool {
	t := bytes.TrimLeft(data, " \t\r\n")
	if len(t) == 0 {
		return false
	}
	switch c := t[0]; {
	case c == '{', c == '[', c == '"', c >= '0' && c <= '9':
		return true
	case c == '-':
		return len(t) > 1 && t[1] >= '0' && t[1] <= '9'
	}
	return false
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

type engineSource struct{ inner eng.TokenSource }

func (s engineSource) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (s engineSource) Location() int64 { return s.inner.Location() }

// engineTokenSource unwraps engine-backed sources and adapts foreign ones.
func engineTokenSource(s Source) eng.TokenSource {
	if es, ok := s.(engineSource); ok {
		return es.inner
	}
	return tokenSourceAdapter{s}
}

type tokenSourceAdapter struct{ inner Source }

func (a tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: eng.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (a tokenSourceAdapter) Location() int64 { return a.inner.Location() }

// Package middleware validates HTTP request bodies against a compiled
// schema. The framework adapters in middleware/echo and middleware/gin share
// DecodeAndValidate so all three answer the same way.
package middleware

import (
	"context"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	jsoncover "github.com/ShubhamK2003/JSONCover"
)

type ctxKeyValue struct{}

// ContextWithValue attaches a validated request body to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, valueBox{v})
}

// ValueFromContext retrieves the body stored by ValidateJSON.
func ValueFromContext(ctx context.Context) (any, bool) {
	v, ok := ctx.Value(ctxKeyValue{}).(valueBox)
	return v.v, ok
}

// valueBox lets a JSON null body be told apart from a missing value.
type valueBox struct{ v any }

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and bodies are capped at 1 MiB.
func DefaultParseOpt() jsoncover.ParseOpt {
	return jsoncover.ParseOpt{
		Strictness: jsoncover.Strictness{OnDuplicateKey: jsoncover.Error},
		MaxBytes:   1 << 20,
	}
}

// ErrorPayload shapes parse issues for JSON responses.
func ErrorPayload(issues jsoncover.Issues) map[string]any {
	return map[string]any{"valid": false, "issues": issues}
}

// DecodeAndValidate parses body and validates it against s. A nil payload
// means the body is valid; otherwise payload is the 400 response body: the
// Basic output for schema failures, ErrorPayload for unreadable JSON.
func DecodeAndValidate(ctx context.Context, s *jsoncover.Schema, body io.Reader, opt jsoncover.ParseOpt) (value any, payload any) {
	if opt == (jsoncover.ParseOpt{}) {
		opt = DefaultParseOpt()
	}
	if opt.MaxBytes > 0 {
		// one extra byte so the parser sees the overflow
		body = io.LimitReader(body, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, map[string]any{"valid": false, "error": err.Error()}
	}
	v, err := jsoncover.ParseJSON(data, opt)
	if err != nil {
		if iss, ok := jsoncover.AsIssues(err); ok {
			return nil, ErrorPayload(iss)
		}
		return nil, map[string]any{"valid": false, "error": err.Error()}
	}
	if out := s.Validate(ctx, v); !out.Valid {
		return nil, out
	}
	return v, nil
}

// ValidateJSON wraps next so that it only sees request bodies valid against
// s. Invalid bodies are answered with 400 and a JSON payload. A zero opt
// means DefaultParseOpt.
func ValidateJSON(s *jsoncover.Schema, opt jsoncover.ParseOpt) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, payload := DecodeAndValidate(r.Context(), s, r.Body, opt)
			if payload != nil {
				writeJSON(w, http.StatusBadRequest, payload)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	b, err := gojson.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

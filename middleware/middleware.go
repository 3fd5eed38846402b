// Package middleware decodes HTTP request bodies through a TypeBinding and
// hands the result to the next handler via the request context.
package middleware

import (
	"context"
	"net/http"

	j "github.com/goccy/go-json"

	gobind "github.com/reoring/gobind"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, db gobind.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, db)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (gobind.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(gobind.Decoded[T])
	return v, ok
}

// DefaultDecodeOpt returns limits suited to untrusted request bodies.
func DefaultDecodeOpt() gobind.DecodeOpt {
	return gobind.DecodeOpt{MaxDepth: 64, MaxBytes: 1 << 20}
}

// IssuePayload is the wire form of one Issue.
type IssuePayload struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues gobind.Issues) map[string]any {
	out := make([]IssuePayload, 0, len(issues))
	for _, it := range issues {
		out = append(out, IssuePayload{Path: it.Path, Code: it.Code, Key: it.Key, Message: it.Message, Hint: it.Hint})
	}
	return map[string]any{"issues": out}
}

// ErrorBody returns the response body for a failed decode.
func ErrorBody(err error) any {
	if iss, ok := gobind.AsIssues(err); ok {
		return ErrorPayload(iss)
	}
	return map[string]any{"error": err.Error()}
}

// DecodeRequest decodes the body of req with b. A zero opt selects
// DefaultDecodeOpt.
func DecodeRequest[T any](req *http.Request, b *gobind.TypeBinding[T], opt gobind.DecodeOpt) (gobind.Decoded[T], error) {
	if opt == (gobind.DecodeOpt{}) {
		opt = DefaultDecodeOpt()
	}
	return b.DecodeWithMeta(req.Context(), gobind.JSONReader(req.Body), opt)
}

// Bind decodes each request body with b and calls next with the result
// stored in the request context. Failures are answered with 400 and the
// issue list.
func Bind[T any](b *gobind.TypeBinding[T], opt gobind.DecodeOpt, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		db, err := DecodeRequest(req, b, opt)
		if err != nil {
			WriteJSON(w, http.StatusBadRequest, ErrorBody(err))
			return
		}
		next.ServeHTTP(w, req.WithContext(ContextWithDecoded(req.Context(), db)))
	})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}

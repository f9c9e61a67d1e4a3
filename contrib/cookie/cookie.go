// Package cookie implements a reqcontext.Provider that exposes the
// incoming request's cookies under the "CookieContext" context type,
// grounded on the cookie provider's parse-once-per-request shape.
package cookie

import (
	"context"
	"net/http"
)

// ContextTypeName is the name access expressions reference for cookie
// values, e.g. CookieContext.sessionId.
const ContextTypeName = "CookieContext"

type requestContextKey struct{}

// WithRequest returns a context carrying r for later cookie extraction.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestContextKey{}, r)
}

func requestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestContextKey{}).(*http.Request)
	return r
}

// Provider extracts every cookie on the request into a flat map, parsed
// once per request by reqcontext.Context's memoization rather than by this
// provider itself.
type Provider struct{}

func (Provider) ContextType() string { return ContextTypeName }

func (Provider) Extract(ctx context.Context) (map[string]any, error) {
	req := requestFrom(ctx)
	out := map[string]any{}
	if req == nil {
		return out, nil
	}
	for _, c := range req.Cookies() {
		out[c.Name] = c.Value
	}
	return out, nil
}

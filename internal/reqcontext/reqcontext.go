// Package reqcontext implements the request-context overlay (C9): the
// per-request tree of context providers (JWT claims, cookies, headers, IP)
// that access expressions and mutations read from, with override layers for
// interceptors that need to locally substitute a value without mutating the
// base context other observers see.
package reqcontext

import (
	"context"
	"fmt"
	"sync"
)

// Provider extracts one named context type's fields from the incoming
// request, e.g. the JWT provider extracting "AuthContext" claims.
type Provider interface {
	// ContextType is the name access expressions reference, e.g. "AuthContext".
	ContextType() string
	// Extract resolves the full value for this context type once per
	// request; callers index into the result by field path.
	Extract(ctx context.Context) (map[string]any, error)
}

// ExtractionErrorKind tags why a context field failed to resolve.
type ExtractionErrorKind int

const (
	ErrUnauthorized ExtractionErrorKind = iota
	ErrMalformed
)

// ExtractionError is returned when a context field cannot be resolved,
// distinguishing "caller isn't authenticated" from "the claim/header exists
// but is shaped wrong" so callers can choose a 401 vs 400 response.
type ExtractionError struct {
	Kind        ExtractionErrorKind
	ContextType string
	Cause       error
}

func (e *ExtractionError) Error() string {
	if e.Kind == ErrUnauthorized {
		return fmt.Sprintf("reqcontext: %s: unauthorized: %v", e.ContextType, e.Cause)
	}
	return fmt.Sprintf("reqcontext: %s: malformed: %v", e.ContextType, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// Context is the overlay: a base set of providers plus zero or more override
// layers pushed by interceptors. It is a tree — With pushes a child layer
// without touching the parent, so two interceptors that both call With on
// the same parent each see only their own override plus the shared base.
type Context struct {
	parent    *Context
	overrides map[string]map[string]any // contextType -> field -> value, this layer only.
	providers map[string]Provider       // only set on the root.

	mu     sync.Mutex
	cached map[string]map[string]any // memoized Provider.Extract results, root only.
}

// New builds a root Context over the given providers, keyed by ContextType.
func New(providers ...Provider) *Context {
	byType := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byType[p.ContextType()] = p
	}
	return &Context{providers: byType, cached: make(map[string]map[string]any)}
}

// WithOverride returns a child Context that resolves fields from overrides
// first, falling through to c for anything overrides doesn't set, the way
// an around-interceptor substitutes a value (e.g. impersonation) for the
// resolvers nested beneath it without affecting its caller's view.
func (c *Context) WithOverride(contextType string, overrides map[string]any) *Context {
	return &Context{
		parent:    c,
		overrides: map[string]map[string]any{contextType: overrides},
	}
}

// Extract resolves fieldPath against contextType, walking override layers
// from the current node up to the root before falling back to the root
// provider's extracted value.
func (c *Context) Extract(ctx context.Context, contextType string, fieldPath []string) (any, error) {
	for layer := c; layer != nil; layer = layer.parent {
		if fields, ok := layer.overrides[contextType]; ok {
			if v, ok := lookup(fields, fieldPath); ok {
				return v, nil
			}
		}
	}

	root := c.root()
	provider, ok := root.providers[contextType]
	if !ok {
		return nil, &ExtractionError{Kind: ErrMalformed, ContextType: contextType, Cause: fmt.Errorf("no provider registered")}
	}

	fields, err := root.extractOnce(ctx, provider)
	if err != nil {
		return nil, err
	}
	v, ok := lookup(fields, fieldPath)
	if !ok {
		return nil, &ExtractionError{Kind: ErrUnauthorized, ContextType: contextType, Cause: fmt.Errorf("field %v not present", fieldPath)}
	}
	return v, nil
}

func (c *Context) root() *Context {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// extractOnce memoizes provider.Extract per request so repeated field
// lookups against the same context type (e.g. across many access checks in
// one resolve) don't re-parse a JWT or re-hit a JWKS cache each time.
func (c *Context) extractOnce(ctx context.Context, p Provider) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cached[p.ContextType()]; ok {
		return v, nil
	}
	v, err := p.Extract(ctx)
	if err != nil {
		return nil, err
	}
	c.cached[p.ContextType()] = v
	return v, nil
}

func lookup(fields map[string]any, path []string) (any, bool) {
	var cur any = fields
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

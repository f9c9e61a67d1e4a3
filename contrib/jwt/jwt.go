// Package jwt implements a reqcontext.Provider that authenticates a request
// from a bearer token in the Authorization header, exposing its claims
// under the "AuthContext" context type access expressions reference.
// Grounded on the JWT provider's extract-from-header/validate/cache-claims
// shape, adapted to a static HS* secret (JWKS key rotation lives in
// contrib/jwt/jwks.go).
package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextTypeName is the name access expressions reference for JWT claims,
// e.g. AuthContext.id, AuthContext.role.
const ContextTypeName = "AuthContext"

// headerContextKey is how the provider receives the incoming request's
// headers; the caller installs it before dispatch, mirroring the teacher's
// pattern of passing a narrow Request trait rather than the whole framework
// request type into context extraction.
type headerContextKey struct{}

// WithHeaders returns a context carrying h for later extraction by
// Provider.Extract.
func WithHeaders(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, headerContextKey{}, h)
}

func headersFrom(ctx context.Context) http.Header {
	h, _ := ctx.Value(headerContextKey{}).(http.Header)
	return h
}

// KeyFunc resolves the verification key for a token, the same shape
// jwt.Parse expects; Provider wraps a static-secret KeyFunc by default and
// accepts a JWKS-backed one from contrib/jwt/jwks.go interchangeably.
type KeyFunc func(*jwt.Token) (any, error)

// Provider authenticates a request's bearer token and exposes its claims.
type Provider struct {
	keyFunc KeyFunc
}

// NewStaticSecret builds a Provider that verifies HS256 tokens against a
// single shared secret, the EXO_JWT_SECRET configuration.
func NewStaticSecret(secret string) *Provider {
	key := []byte(secret)
	return &Provider{keyFunc: func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("jwt: unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}}
}

// NewWithKeyFunc builds a Provider around an arbitrary key resolution
// strategy, used for the JWKS-backed RS*/ES* case.
func NewWithKeyFunc(keyFunc KeyFunc) *Provider {
	return &Provider{keyFunc: keyFunc}
}

func (p *Provider) ContextType() string { return ContextTypeName }

// Extract reads the Authorization header from ctx (installed by
// WithHeaders), verifies it, and returns its claims as a plain map. A
// missing or non-Bearer header is not an error — it represents an anonymous
// caller, matching the source's "no header ⇒ Null claims" stance — but an
// expired or tampered token is.
func (p *Provider) Extract(ctx context.Context) (map[string]any, error) {
	header := headersFrom(ctx).Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return map[string]any{}, nil
	}

	parsed, err := jwt.Parse(token, p.keyFunc, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}))
	if err != nil {
		return nil, classifyError(err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("jwt: unexpected claims type %T", parsed.Claims)
	}
	return map[string]any(claims), nil
}

// Unauthorized and Malformed mirror the source's two JWT failure classes:
// an expired or invalid-signature token is Unauthorized, everything else
// (unparseable header, unknown algorithm) is Malformed.
var (
	ErrUnauthorized = fmt.Errorf("jwt: unauthorized")
	ErrMalformed    = fmt.Errorf("jwt: malformed")
)

func classifyError(err error) error {
	// jwt/v5 wraps ErrTokenExpired/ErrTokenSignatureInvalid via errors.Is
	// compatible sentinels; any other parse failure (including a key
	// function that could not resolve a key) is Malformed.
	if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

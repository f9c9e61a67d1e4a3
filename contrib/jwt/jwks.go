package jwt

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// jwk is one entry of a JWKS document's "keys" array, RSA fields only — the
// only algorithm family the source's JWKS client supports.
type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// JWKSEndpoint caches a JWKS document behind a read-mostly lock: many
// concurrent readers, a single in-flight fetch on first miss, coalesced via
// singleflight so a burst of requests arriving before the first fetch
// completes doesn't each issue its own HTTP call. Rotation policy: refetch
// at most once per refreshEvery; a stale cache is served if a refetch
// fails.
type JWKSEndpoint struct {
	url          string
	refreshEvery time.Duration
	client       *http.Client

	mu        sync.RWMutex
	set       *jwkSet
	fetchedAt time.Time

	group singleflight.Group
}

// NewJWKSEndpoint builds a JWKSEndpoint for url, refetching at most once
// per refreshEvery.
func NewJWKSEndpoint(url string, refreshEvery time.Duration) *JWKSEndpoint {
	return &JWKSEndpoint{url: url, refreshEvery: refreshEvery, client: http.DefaultClient}
}

// KeyFunc returns a jwt.Keyfunc that resolves the signing key for a token
// by its "kid" header, fetching (or refreshing) the JWKS document as
// needed.
func (e *JWKSEndpoint) KeyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("jwks: token has no kid header")
	}

	set, err := e.current()
	if err != nil {
		return nil, err
	}
	for _, k := range set.Keys {
		if k.Kid == kid && k.Kty == "RSA" {
			return parseRSAPublicKey(k)
		}
	}
	return nil, fmt.Errorf("jwks: no matching kid %q", kid)
}

func (e *JWKSEndpoint) current() (*jwkSet, error) {
	e.mu.RLock()
	fresh := e.set != nil && time.Since(e.fetchedAt) < e.refreshEvery
	set := e.set
	e.mu.RUnlock()
	if fresh {
		return set, nil
	}

	v, err, _ := e.group.Do("fetch", func() (any, error) {
		fetched, ferr := e.fetch()
		if ferr != nil {
			// Stale-while-revalidate: serve the old set rather than failing
			// the request if we have one.
			e.mu.RLock()
			stale := e.set
			e.mu.RUnlock()
			if stale != nil {
				return stale, nil
			}
			return nil, ferr
		}
		e.mu.Lock()
		e.set = fetched
		e.fetchedAt = time.Now()
		e.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jwkSet), nil
}

func (e *JWKSEndpoint) fetch() (*jwkSet, error) {
	resp, err := e.client.Get(e.url)
	if err != nil {
		return nil, fmt.Errorf("jwks: fetch %s: %w", e.url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jwks: read %s: %w", e.url, err)
	}
	var set jwkSet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("jwks: parse %s: %w", e.url, err)
	}
	return &set, nil
}

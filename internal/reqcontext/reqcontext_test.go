package reqcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	typ        string
	calls      int
	fields     map[string]any
}

func (f *fakeProvider) ContextType() string { return f.typ }

func (f *fakeProvider) Extract(ctx context.Context) (map[string]any, error) {
	f.calls++
	return f.fields, nil
}

func TestExtractResolvesBaseProvider(t *testing.T) {
	p := &fakeProvider{typ: "AuthContext", fields: map[string]any{"id": "u1"}}
	c := New(p)

	v, err := c.Extract(context.Background(), "AuthContext", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "u1", v)
}

func TestExtractCachesPerRequest(t *testing.T) {
	p := &fakeProvider{typ: "AuthContext", fields: map[string]any{"id": "u1", "role": "admin"}}
	c := New(p)

	_, err := c.Extract(context.Background(), "AuthContext", []string{"id"})
	require.NoError(t, err)
	_, err = c.Extract(context.Background(), "AuthContext", []string{"role"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
}

// TestWithOverrideShadowsWithoutMutatingParent reproduces the overlay
// semantics: a child override is visible through the child but the parent
// Context used by a sibling resolver is untouched.
func TestWithOverrideShadowsWithoutMutatingParent(t *testing.T) {
	p := &fakeProvider{typ: "AuthContext", fields: map[string]any{"id": "u1"}}
	base := New(p)
	overridden := base.WithOverride("AuthContext", map[string]any{"id": "impersonated"})

	v, err := overridden.Extract(context.Background(), "AuthContext", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "impersonated", v)

	v, err = base.Extract(context.Background(), "AuthContext", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "u1", v)
}

func TestExtractMissingProviderIsMalformed(t *testing.T) {
	c := New()
	_, err := c.Extract(context.Background(), "AuthContext", []string{"id"})
	require.Error(t, err)
	var eerr *ExtractionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ErrMalformed, eerr.Kind)
}

func TestExtractMissingFieldIsUnauthorized(t *testing.T) {
	p := &fakeProvider{typ: "AuthContext", fields: map[string]any{"id": "u1"}}
	c := New(p)
	_, err := c.Extract(context.Background(), "AuthContext", []string{"role"})
	require.Error(t, err)
	var eerr *ExtractionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ErrUnauthorized, eerr.Kind)
}

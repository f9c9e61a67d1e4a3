package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/exocore/internal/intercept"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Image{
		Subsystems: []Subsystem{
			{Name: "postgres", Payload: []byte{1, 2, 3}},
			{Name: "deno", Payload: []byte{4, 5}},
		},
		QueryInterceptionMap: map[string]intercept.Tree{
			"concerts": intercept.Intercepted([]intercept.I{{SubsystemIndex: 0, InterceptorIndex: 0}}, intercept.Operation(), nil),
		},
		MutationInterceptionMap: map[string]intercept.Tree{
			"createConcert": intercept.Operation(),
		},
		TrustedDocuments: map[string]string{
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b85": "query { concerts { id } }",
		},
	}
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, out.Subsystems, 2)

	payload, ok := out.Lookup("postgres")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, payload)

	assert.Equal(t, intercept.KindIntercepted, out.QueryInterceptionMap["concerts"].Kind)
	assert.Equal(t, "query { concerts { id } }", out.TrustedDocuments["e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b85"])
}

// TestEncodeIsDeterministicRegardlessOfInputOrder mirrors the "same model
// compiles to the same image" property: subsystem order at encode time must
// not affect the bytes produced.
func TestEncodeIsDeterministicRegardlessOfInputOrder(t *testing.T) {
	a := Image{Subsystems: []Subsystem{{Name: "postgres", Payload: []byte{1}}, {Name: "deno", Payload: []byte{2}}}}
	b := Image{Subsystems: []Subsystem{{Name: "deno", Payload: []byte{2}}, {Name: "postgres", Payload: []byte{1}}}}

	dataA, err := Encode(a)
	require.NoError(t, err)
	dataB, err := Encode(b)
	require.NoError(t, err)
	assert.Equal(t, dataA, dataB)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("not an image, just text"))
	require.Error(t, err)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrDeserialize, serr.Kind)
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	data, err := Encode(Image{})
	require.NoError(t, err)
	data[4] = 99 // corrupt the little-endian version field's low byte.

	_, err = Decode(data)
	require.Error(t, err)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrVersionMismatch, serr.Kind)
}

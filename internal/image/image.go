// Package image implements the system image codec (C8): the serialized,
// versioned envelope that bundles every subsystem's compiled build output
// for fast startup, grounded on the compile-then-serve split the rest of
// this module implements (internal/build produces the payloads this package
// wraps and later unwraps).
package image

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"sort"

	"github.com/syssam/exocore/internal/intercept"
)

// magic identifies a system image file; version is bumped whenever the
// envelope or a subsystem's gob-encoded shape changes incompatibly.
var magic = [4]byte{'E', 'X', 'O', 'I'}

const version uint32 = 1

// SerializationErrorKind tags why encode/decode failed.
type SerializationErrorKind int

const (
	ErrSerialize SerializationErrorKind = iota
	ErrDeserialize
	ErrVersionMismatch
)

// SerializationError reports a codec failure with enough context to
// distinguish a corrupt file from a version skew.
type SerializationError struct {
	Kind  SerializationErrorKind
	Got   uint32
	Want  uint32
	Cause error
}

func (e *SerializationError) Error() string {
	switch e.Kind {
	case ErrVersionMismatch:
		return fmt.Sprintf("image: version mismatch: file is v%d, this binary reads v%d", e.Got, e.Want)
	case ErrSerialize:
		return fmt.Sprintf("image: serialize: %v", e.Cause)
	default:
		return fmt.Sprintf("image: deserialize: %v", e.Cause)
	}
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// Subsystem is one compiled subsystem's opaque payload plus the name used to
// route it back to its resolver at load time.
type Subsystem struct {
	Name    string
	Payload []byte
}

// Image is the full deserialized system image: every subsystem's compiled
// payload, in the deterministic order Encode wrote them, plus the
// outer-encoder fields that are not any single subsystem's concern —
// the woven interception trees (keyed by operation name, one map for
// queries and one for mutations, since a name can be a query in one
// subsystem and unrelated in another) and the trusted-document allowlist
// (hex-encoded sha256 digest to document source).
type Image struct {
	Subsystems              []Subsystem
	QueryInterceptionMap    map[string]intercept.Tree
	MutationInterceptionMap map[string]intercept.Tree
	TrustedDocuments        map[string]string
}

// body is the gob payload wrapped by the magic/version envelope: everything
// in Image except the framing itself.
type body struct {
	Subsystems              []Subsystem
	QueryInterceptionMap    map[string]intercept.Tree
	MutationInterceptionMap map[string]intercept.Tree
	TrustedDocuments        map[string]string
}

// Encode serializes an Image into the versioned binary envelope. Map
// iteration order in Go is randomized, so Encode re-sorts Subsystems by
// Name before writing them, making the output byte-identical across runs
// regardless of build order and satisfying the "same model compiles to the
// same image" property; the interception and trusted-document maps are
// gob-encoded as maps directly, since gob already sorts map keys on encode.
func Encode(img Image) ([]byte, error) {
	sorted := make([]Subsystem, len(img.Subsystems))
	copy(sorted, img.Subsystems)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(body{
		Subsystems:              sorted,
		QueryInterceptionMap:    img.QueryInterceptionMap,
		MutationInterceptionMap: img.MutationInterceptionMap,
		TrustedDocuments:        img.TrustedDocuments,
	}); err != nil {
		return nil, &SerializationError{Kind: ErrSerialize, Cause: err}
	}

	var out bytes.Buffer
	out.Write(magic[:])
	if err := binary.Write(&out, binary.LittleEndian, version); err != nil {
		return nil, &SerializationError{Kind: ErrSerialize, Cause: err}
	}
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// Decode parses a binary system image produced by Encode, rejecting files
// with a bad magic or an incompatible version before attempting to decode
// the gob body.
func Decode(data []byte) (Image, error) {
	if len(data) < 8 {
		return Image{}, &SerializationError{Kind: ErrDeserialize, Cause: fmt.Errorf("image: truncated header")}
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return Image{}, &SerializationError{Kind: ErrDeserialize, Cause: fmt.Errorf("image: bad magic")}
	}
	got := binary.LittleEndian.Uint32(data[4:8])
	if got != version {
		return Image{}, &SerializationError{Kind: ErrVersionMismatch, Got: got, Want: version}
	}

	var b body
	if err := gob.NewDecoder(bytes.NewReader(data[8:])).Decode(&b); err != nil {
		return Image{}, &SerializationError{Kind: ErrDeserialize, Cause: err}
	}
	return Image{
		Subsystems:              b.Subsystems,
		QueryInterceptionMap:    b.QueryInterceptionMap,
		MutationInterceptionMap: b.MutationInterceptionMap,
		TrustedDocuments:        b.TrustedDocuments,
	}, nil
}

// Lookup returns the payload for the named subsystem, in the spirit of the
// request-context overlay's lazy per-provider resolution: callers decode the
// opaque bytes with whatever gob type their subsystem registered.
func (img Image) Lookup(name string) ([]byte, bool) {
	for _, s := range img.Subsystems {
		if s.Name == name {
			return s.Payload, true
		}
	}
	return nil, false
}

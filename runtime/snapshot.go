package runtime

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Function-table snapshots
// ---------------------------------------------------------------------------
//
// A snapshot is the content-addressed view of the engine's function table:
// one digest per registered function, covering the metadata this subsystem
// owns (name, length, kind, constructor kind, this mode) plus the source
// text for ordinary functions. Digests are what the store persists and what
// hosts diff across sessions.

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// FunctionDigest is a compact, serializable description of one function.
type FunctionDigest struct {
	Name            string   `cbor:"name"`
	Length          int      `cbor:"length"`
	Kind            string   `cbor:"kind"`
	ConstructorKind string   `cbor:"constructorKind"`
	ThisMode        string   `cbor:"thisMode"`
	Source          string   `cbor:"source,omitempty"`
	Hash            [32]byte `cbor:"hash"`
}

// HexHash returns the digest hash as a hex string (the store's key form).
func (d *FunctionDigest) HexHash() string {
	return hex.EncodeToString(d.Hash[:])
}

// Snapshot is the full function-table view at a point in time.
type Snapshot struct {
	Version   int              `cbor:"version"`
	Functions []FunctionDigest `cbor:"functions"`
}

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// ---------------------------------------------------------------------------
// Hashing
// ---------------------------------------------------------------------------

// HashFunction computes the SHA-256 content hash of a function's digestible
// fields. The layout is a tag byte followed by length-prefixed fields, so
// adjacent fields can never collide.
func HashFunction(name string, length int, kind Kind, ctor ConstructorKind, mode ThisMode, source string) [32]byte {
	var buf []byte

	writeString := func(s string) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, s...)
	}

	// Tag byte for function hash format
	buf = append(buf, 0x01)
	writeString(name)

	var lenField [4]byte
	binary.BigEndian.PutUint32(lenField[:], uint32(length))
	buf = append(buf, lenField[:]...)

	writeString(kind.String())
	writeString(ctor.String())
	writeString(mode.String())
	writeString(source)

	return sha256.Sum256(buf)
}

// DigestFunction builds a digest from a live function. Source text is
// carried only when includeSource is set (natives have none either way).
func DigestFunction(f *FunctionObject, includeSource bool) FunctionDigest {
	source := ""
	if f.body != nil {
		source = f.body.Source
	}

	d := FunctionDigest{
		Name:            f.name,
		Length:          f.length,
		Kind:            f.kind.String(),
		ConstructorKind: f.ctorKind.String(),
		ThisMode:        f.thisMode.String(),
	}
	d.Hash = HashFunction(f.name, f.length, f.kind, f.ctorKind, f.thisMode, source)
	if includeSource {
		d.Source = source
	}
	return d
}

// Snapshot builds the function-table snapshot in registration order.
func (e *Engine) Snapshot(includeSource bool) *Snapshot {
	funcs := e.registry.Functions()
	snap := &Snapshot{
		Version:   SnapshotVersion,
		Functions: make([]FunctionDigest, 0, len(funcs)),
	}
	for _, f := range funcs {
		snap.Functions = append(snap.Functions, DigestFunction(f, includeSource))
	}
	return snap
}

// ---------------------------------------------------------------------------
// Wire encoding
// ---------------------------------------------------------------------------

// MarshalSnapshot serializes a Snapshot to canonical CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("runtime: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// MarshalDigest serializes a FunctionDigest to canonical CBOR bytes.
func MarshalDigest(d *FunctionDigest) ([]byte, error) {
	return cborEncMode.Marshal(d)
}

// UnmarshalDigest deserializes a FunctionDigest from CBOR bytes.
func UnmarshalDigest(data []byte) (*FunctionDigest, error) {
	var d FunctionDigest
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("runtime: unmarshal digest: %w", err)
	}
	return &d, nil
}

package heapdump

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrNoEngineID is returned when decoding a snapshot that names no engine.
var ErrNoEngineID = errors.New("heapdump: snapshot has no engine ID")

// cborEncMode uses canonical mode so equal snapshots encode identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("heapdump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	data, err := cborEncMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("heapdump: marshal snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("heapdump: unmarshal snapshot: %w", err)
	}
	if s.EngineID == "" {
		return nil, ErrNoEngineID
	}
	return &s, nil
}

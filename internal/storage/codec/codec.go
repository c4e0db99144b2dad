package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/navalcombat/internal/model"
)

// Format identifies a save written by this codec
const Format = "navalcombat/snapshot"

// Version is the envelope layout version
const Version = 1

type envelope struct {
	Format   string          `json:"format"`
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Encode serializes a snapshot into a checksummed envelope
func Encode(snap *model.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("encode: nil snapshot")
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return json.Marshal(envelope{
		Format:   Format,
		Version:  Version,
		Checksum: checksum(body),
		Snapshot: body,
	})
}

// Decode parses an envelope, verifying its format, version and checksum, and
// that the snapshot inside could be restored. Any failure is reported as
// model.ErrCorruptSnapshot.
func Decode(data []byte) (*model.Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", model.ErrCorruptSnapshot)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptSnapshot, err)
	}
	if env.Format != Format {
		return nil, fmt.Errorf("%w: unknown format %q", model.ErrCorruptSnapshot, env.Format)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", model.ErrCorruptSnapshot, env.Version)
	}
	if len(env.Snapshot) == 0 {
		return nil, fmt.Errorf("%w: missing snapshot", model.ErrCorruptSnapshot)
	}
	if checksum(env.Snapshot) != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", model.ErrCorruptSnapshot)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(env.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func checksum(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

package proposal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest is a fixed-length SHA-256 content digest of a serialized action
// payload. The engine only ever stores and compares digests – it never hashes
// raw payload content on behalf of a caller.
type Digest [sha256.Size]byte

// ComputeDigest is a caller-side convenience that hashes a serialized payload.
func ComputeDigest(payload []byte) Digest {
	return sha256.Sum256(payload)
}

// String returns the lower-case hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is all zeroes.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler so digests serialize as hex in
// JSON and YAML documents.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest decodes a hex-encoded digest.
func ParseDigest(encoded string) (Digest, error) {
	var out Digest
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return out, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(raw) != sha256.Size {
		return out, fmt.Errorf("invalid digest length %d, expected %d", len(raw), sha256.Size)
	}
	copy(out[:], raw)
	return out, nil
}

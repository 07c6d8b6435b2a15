package monitor

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte ed25519 public key. The zero value is used as a safe
// default when a single entry in a fetched batch fails to parse.
type Pubkey [32]byte

// ZeroPubkey is the all-zeroes key.
var ZeroPubkey Pubkey

// ParsePubkey decodes a base-58 public key string.
func ParsePubkey(s string) (Pubkey, error) {
	var key Pubkey
	decoded, err := base58.Decode(s)
	if err != nil {
		return ZeroPubkey, fmt.Errorf("invalid base58 pubkey %q: %w", s, err)
	}
	if len(decoded) != len(key) {
		return ZeroPubkey, fmt.Errorf("invalid pubkey %q: expected 32 bytes, got %d", s, len(decoded))
	}
	copy(key[:], decoded)
	return key, nil
}

// ParsePubkeyOrZero decodes a base-58 public key string, substituting the zero
// key for unparseable input. Used when converting fetched batches, where one
// bad entry must not fail the whole batch.
func ParsePubkeyOrZero(s string) Pubkey {
	key, err := ParsePubkey(s)
	if err != nil {
		return ZeroPubkey
	}
	return key
}

// MustParsePubkey decodes a base-58 public key string and panics on failure.
// Intended for tests and hard-coded program ids.
func MustParsePubkey(s string) Pubkey {
	key, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return key
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether the key is the all-zeroes default.
func (p Pubkey) IsZero() bool {
	return p == ZeroPubkey
}

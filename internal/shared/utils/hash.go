package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	XXHash HashAlgorithm = "xxhash"
)

// Hasher hashes response payloads
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns the fast non-cryptographic hasher used for ETags
func DefaultHasher() *Hasher {
	return NewHasher(XXHash)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		return strconv.FormatUint(xxhash.Sum64(data), 16)
	}
}

// HashJSON hashes the JSON encoding of v. Map keys are sorted so equal
// values hash equally.
func (h *Hasher) HashJSON(v any) (string, error) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return h.Hash(data), nil
}

// ETag returns a weak entity tag for the JSON encoding of v.
func (h *Hasher) ETag(v any) (string, error) {
	sum, err := h.HashJSON(v)
	if err != nil {
		return "", err
	}
	return `W/"` + sum + `"`, nil
}

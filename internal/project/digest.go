package project

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Digest — SHA-256 отпечаток содержимого; ключ дискового кэша драйвера.
type Digest [32]byte

// IsZero reports whether the digest is the zero value.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// HashBytes hashes raw content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// HashFile hashes a file's content on disk.
func HashFile(path string) (Digest, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(content), nil
}

// Combine hashes a sequence of digests into one aggregate key.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, part := range parts {
		h.Write(part[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

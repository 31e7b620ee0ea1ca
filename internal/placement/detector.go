package placement

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/spf13/afero"
	"lukechampine.com/blake3"
)

// Supported digest names for duplicate detection.
const (
	HashBlake3 = "blake3"
	HashSHA256 = "sha256"
)

// blake3Size is the digest length in bytes.
const blake3Size = 32

// HashFunc returns the constructor for the named digest.
func HashFunc(name string) (func() hash.Hash, error) {
	switch name {
	case HashBlake3:
		return func() hash.Hash { return blake3.New(blake3Size, nil) }, nil
	case HashSHA256:
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("unknown hash %q (want %s or %s)", name, HashBlake3, HashSHA256)
	}
}

// Comparer decides whether two files hold identical content.
type Comparer interface {
	IsExactDuplicate(a, b string) (bool, error)
}

// Detector compares files by a digest of their full content.
type Detector struct {
	fs      afero.Fs
	newHash func() hash.Hash
}

// NewDetector returns a Detector using the named digest.
func NewDetector(fs afero.Fs, hashName string) (*Detector, error) {
	h, err := HashFunc(hashName)
	if err != nil {
		return nil, err
	}
	return &Detector{fs: fs, newHash: h}, nil
}

// Digest hashes the whole content of path.
func (d *Detector) Digest(path string) ([]byte, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := d.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// IsExactDuplicate reports whether a and b have identical content.
// Sizes are not compared first; both files are always read in full.
func (d *Detector) IsExactDuplicate(a, b string) (bool, error) {
	da, err := d.Digest(a)
	if err != nil {
		return false, err
	}
	db, err := d.Digest(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

// Package gitlib wraps the libgit2 bindings behind small Go types. Every
// wrapper owns its libgit2 object and releases it in Free; callers never
// touch git2go types directly.
package gitlib

import (
	"encoding/hex"

	git2go "github.com/libgit2/git2go/v34"
)

// HashSize is the size of a SHA-1 object id in bytes.
const HashSize = 20

// Hash is a git object id.
type Hash [HashSize]byte

// ZeroHash returns the zero object id.
func ZeroHash() Hash {
	return Hash{}
}

// NewHash parses a hex object id. Malformed input yields the zero hash.
func NewHash(s string) Hash {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != HashSize {
		return Hash{}
	}

	var h Hash
	copy(h[:], raw)

	return h
}

// HashFromOid converts a libgit2 oid.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash
	copy(h[:], oid[:])

	return h
}

// ToOid converts the hash back to a libgit2 oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}

// String returns the 40-character hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

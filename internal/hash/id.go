// Package hash provides xxHash64 helpers for cache keys and baseline fingerprints.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Digest accumulates typed fields into one xxHash64 value. Strings are length
// prefixed so adjacent fields cannot collide by shifting bytes between them.
type Digest struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// String adds s to the digest.
func (h *Digest) String(s string) *Digest {
	h.Uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)

	return h
}

// Uint64 adds v to the digest.
func (h *Digest) Uint64(v uint64) *Digest {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])

	return h
}

// Int adds v to the digest.
func (h *Digest) Int(v int) *Digest {
	return h.Uint64(uint64(int64(v)))
}

// Float adds the IEEE-754 bits of v. Negative zero is folded into zero.
func (h *Digest) Float(v float64) *Digest {
	if v == 0 {
		v = 0
	}

	return h.Uint64(math.Float64bits(v))
}

// Bool adds b to the digest.
func (h *Digest) Bool(b bool) *Digest {
	if b {
		return h.Uint64(1)
	}

	return h.Uint64(0)
}

// Sum64 returns the current hash value.
func (h *Digest) Sum64() uint64 {
	return h.d.Sum64()
}

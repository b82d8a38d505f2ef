// Package seed provides the random sources used for deck shuffles and
// fallback-reply selection.
//
// Production draws seeds from crypto/rand. When a fixed key is configured
// (DECK_SEED), seeds are derived with HMAC-SHA256(key, label) so a given
// session label always produces the same sequence.
package seed

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Entropy returns a PCG source seeded from crypto/rand.
func Entropy() *mrand.Rand {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return mrand.New(mrand.NewPCG(binary.BigEndian.Uint64(b[:8]), binary.BigEndian.Uint64(b[8:])))
}

// FromKey returns a deterministic source for (key, label).
func FromKey(key, label string) *mrand.Rand {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(label))
	sum := h.Sum(nil)
	return mrand.New(mrand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))
}

// Fixed returns a deterministic source from a numeric seed (tests).
func Fixed(n uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(n, n^0x9e3779b97f4a7c15))
}

// New picks FromKey when key is set, Entropy otherwise.
func New(key, label string) *mrand.Rand {
	if key == "" {
		return Entropy()
	}
	return FromKey(key, label)
}

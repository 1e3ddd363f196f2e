// Package checksum fingerprints persisted payloads so the data-file watcher
// can tell our own saves from external edits.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Ring remembers the last few digests. It is safe for concurrent use.
type Ring struct {
	mu   sync.Mutex
	size int
	sums []string // newest last
}

// NewRing returns a ring holding at most size digests.
func NewRing(size int) *Ring {
	return &Ring{size: max(size, 1)}
}

// Add records the digest of data and returns it.
func (r *Ring) Add(data []byte) string {
	sum := Sum(data)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sums = append(r.sums, sum)
	if len(r.sums) > r.size {
		r.sums = slices.Delete(r.sums, 0, len(r.sums)-r.size)
	}
	return sum
}

// Contains reports whether sum is among the remembered digests.
func (r *Ring) Contains(sum string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.sums, sum)
}

// Last returns the newest digest, or "" when empty.
func (r *Ring) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sums) == 0 {
		return ""
	}
	return r.sums[len(r.sums)-1]
}

// Package wallet holds the fixed-capacity wallet set and the
// onboarding state machine that fills it.
package wallet

import (
	"fmt"

	"github.com/solfleet/solfleet/internal/vault"
)

// Set is an ordered collection of wallet identities with a fixed
// capacity. Batch operations are valid only when the set is full.
// Duplicate addresses are allowed and treated as independent entries.
//
// Set is not safe for concurrent use; the owning session serializes
// access.
type Set struct {
	capacity int
	wallets  []*vault.Identity
}

// NewSet creates an empty set with the given capacity.
func NewSet(capacity int) *Set {
	return &Set{
		capacity: capacity,
		wallets:  make([]*vault.Identity, 0, capacity),
	}
}

// Add appends an identity, failing once the set is at capacity.
func (s *Set) Add(id *vault.Identity) error {
	if len(s.wallets) >= s.capacity {
		return fmt.Errorf("wallet set is full (%d entries)", s.capacity)
	}
	s.wallets = append(s.wallets, id)
	return nil
}

// Len returns the number of wallets currently in the set.
func (s *Set) Len() int {
	return len(s.wallets)
}

// Capacity returns the fixed capacity.
func (s *Set) Capacity() int {
	return s.capacity
}

// Full reports whether the set holds exactly its capacity.
func (s *Set) Full() bool {
	return len(s.wallets) == s.capacity
}

// Reset drops all entries.
func (s *Set) Reset() {
	s.wallets = s.wallets[:0]
}

// Snapshot returns a copy of the current entries in insertion order.
// Batch operations read the snapshot so a concurrent reset cannot
// change the set mid-run.
func (s *Set) Snapshot() []*vault.Identity {
	out := make([]*vault.Identity, len(s.wallets))
	copy(out, s.wallets)
	return out
}

package wallet

import (
	"fmt"
	"strings"

	"github.com/solfleet/solfleet/internal/vault"
)

// Phase names an onboarding state. The flow walks
// AwaitingSecret(i) -> AwaitingName(i) for i in [1..capacity], then
// Complete.
type Phase int

const (
	PhaseAwaitingSecret Phase = iota
	PhaseAwaitingName
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingSecret:
		return "awaiting secret"
	case PhaseAwaitingName:
		return "awaiting name"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Flow collects (secret, name) pairs into a Set, one wallet at a time.
// An invalid secret leaves the flow in place with the error surfaced;
// cancellation discards everything accumulated so far, so a cancelled
// flow never leaves a half-filled set behind.
type Flow struct {
	vault   *vault.Vault
	set     *Set
	phase   Phase
	pending *vault.Identity
}

// BeginOnboarding resets the set and starts a fresh flow at
// AwaitingSecret(1).
func BeginOnboarding(v *vault.Vault, set *Set) *Flow {
	set.Reset()
	return &Flow{vault: v, set: set, phase: PhaseAwaitingSecret}
}

// Phase returns the current state.
func (f *Flow) Phase() Phase {
	return f.phase
}

// Index returns the 1-based number of the wallet currently being
// collected, or the capacity once complete.
func (f *Flow) Index() int {
	if f.phase == PhaseComplete {
		return f.set.Capacity()
	}
	return f.set.Len() + 1
}

// SubmitSecret handles input in AwaitingSecret(i). On success the flow
// moves to AwaitingName(i); on a malformed secret it stays put and the
// error is returned for the caller to surface.
func (f *Flow) SubmitSecret(text string) error {
	if f.phase != PhaseAwaitingSecret {
		return fmt.Errorf("not expecting a secret (state: %s)", f.phase)
	}

	id, err := f.vault.CreateIdentity(text)
	if err != nil {
		return err
	}

	f.pending = id
	f.phase = PhaseAwaitingName
	return nil
}

// SubmitName handles input in AwaitingName(i): names the pending
// identity (empty defaults to "wallet{i}") and appends it. The flow
// moves to AwaitingSecret(i+1), or Complete when the set is full.
func (f *Flow) SubmitName(text string) error {
	if f.phase != PhaseAwaitingName {
		return fmt.Errorf("not expecting a name (state: %s)", f.phase)
	}

	name := strings.TrimSpace(text)
	if name == "" {
		name = fmt.Sprintf("wallet%d", f.Index())
	}
	f.pending.SetName(name)

	if err := f.set.Add(f.pending); err != nil {
		return err
	}
	f.pending = nil

	if f.set.Full() {
		f.phase = PhaseComplete
	} else {
		f.phase = PhaseAwaitingSecret
	}
	return nil
}

// Cancel ends the flow and discards any partially collected wallets.
// A batch needs the full set anyway, so keeping a partial set would
// only leave unusable state around.
func (f *Flow) Cancel() {
	f.set.Reset()
	f.pending = nil
	f.phase = PhaseComplete
}

package batch

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Status classifies one wallet's result within a batch.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is one wallet's result. Exactly one of Signature (success),
// Reason (skipped) or Err (failed) is meaningful.
type Outcome struct {
	Wallet    string
	Address   solana.PublicKey
	Status    Status
	Signature solana.Signature
	Reason    string
	Err       error
}

// Report is the ordered per-wallet outcome list for a whole batch,
// in wallet-insertion order.
type Report []Outcome

// AllSucceeded reports whether every wallet succeeded. Any skip or
// failure makes the batch a partial result.
func (r Report) AllSucceeded() bool {
	for _, o := range r {
		if o.Status != StatusSuccess {
			return false
		}
	}
	return true
}

// Summary renders the user-visible result: a single confirmation line
// when everything succeeded, otherwise each non-success wallet with
// its reason.
func (r Report) Summary() string {
	if r.AllSucceeded() {
		return fmt.Sprintf("all %d wallets succeeded", len(r))
	}

	var b strings.Builder
	succeeded := 0
	for _, o := range r {
		switch o.Status {
		case StatusSuccess:
			succeeded++
		case StatusSkipped:
			fmt.Fprintf(&b, "%s: skipped (%s)\n", o.Wallet, o.Reason)
		case StatusFailed:
			fmt.Fprintf(&b, "%s: failed (%v)\n", o.Wallet, o.Err)
		}
	}
	return fmt.Sprintf("%d/%d wallets succeeded\n%s", succeeded, len(r), strings.TrimRight(b.String(), "\n"))
}

package batch

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrZeroBalance means the main wallet has nothing to distribute.
var ErrZeroBalance = errors.New("main wallet balance is zero")

// ErrNoFunds is the per-wallet condition of having nothing spendable
// beyond the fee reserve.
var ErrNoFunds = errors.New("wallet has no spendable funds")

// InsufficientWalletsError means a batch was requested before the
// wallet set was full.
type InsufficientWalletsError struct {
	Have int
	Want int
}

func (e *InsufficientWalletsError) Error() string {
	return fmt.Sprintf("wallet set not full: have %d wallets, need %d", e.Have, e.Want)
}

// InsufficientFundsError means the main balance floors to zero when
// split across the set.
type InsufficientFundsError struct {
	Balance uint64
	Wallets int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("balance %d lamports split across %d wallets leaves nothing per wallet", e.Balance, e.Wallets)
}

// UnconfirmedError means a transaction was submitted but confirmation
// did not come back positive. The transfer may still land on chain;
// re-running the batch is NOT idempotent.
type UnconfirmedError struct {
	Signature solana.Signature
}

func (e *UnconfirmedError) Error() string {
	return fmt.Sprintf("transaction %s submitted but not confirmed", e.Signature)
}

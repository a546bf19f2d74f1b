// Package client holds the external-facing adapters: the Solana RPC
// gateway and the swap-routing service client.
package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// RpcError wraps a failed RPC round trip.
type RpcError struct {
	Op  string
	Err error
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RpcError) Unwrap() error { return e.Err }

// SubmissionError wraps a rejected transaction submission.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient *rpc.Client
	log       *zap.Logger
}

// NewSolanaClient creates a new Solana client against the given RPC endpoint.
func NewSolanaClient(rpcURL string, log *zap.Logger) *SolanaClient {
	return &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		log:       log.Named("solana"),
	}
}

// Balance returns the SOL balance in lamports for the given address.
func (c *SolanaClient) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, addr, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, &RpcError{Op: "getBalance", Err: err}
	}
	return balance.Value, nil
}

// TokenBalance returns the balance of the owner's associated token
// account for the given mint, in the token's base units. A missing
// token account reads as zero.
func (c *SolanaClient) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		if isAccountNotFoundError(err) {
			return 0, nil
		}
		return 0, &RpcError{Op: "getTokenAccountBalance", Err: err}
	}

	if balance.Value == nil {
		return 0, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, &RpcError{Op: "getTokenAccountBalance", Err: fmt.Errorf("unparseable amount %q: %w", balance.Value.Amount, err)}
	}
	return amount, nil
}

// BuildTransfer builds an unsigned lamport transfer against the latest
// blockhash.
func (c *SolanaClient) BuildTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error) {
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, &RpcError{Op: "getLatestBlockhash", Err: err}
	}

	transferInstruction := system.NewTransferInstruction(
		lamports,
		from,
		to,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transferInstruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// Submit sends a signed transaction and returns its signature.
func (c *SolanaClient) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return solana.Signature{}, &SubmissionError{Err: err}
	}

	c.log.Debug("transaction submitted", zap.Stringer("signature", sig))
	return sig, nil
}

// Confirm checks in a single round trip whether the signature has
// reached at least confirmed commitment. No retry or backoff: the
// caller decides what an unconfirmed submission means.
func (c *SolanaClient) Confirm(ctx context.Context, sig solana.Signature) (bool, error) {
	out, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, &RpcError{Op: "getSignatureStatuses", Err: err}
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return false, nil
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	default:
		return false, nil
	}
}

// isAccountNotFoundError checks if error indicates that an account doesn't exist
func isAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}

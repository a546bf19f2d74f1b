// Package batch drives the four batch operations - distribute, buy,
// sell, withdraw - over the wallet set, one outcome per wallet.
// Precondition failures abort the whole command before any per-wallet
// work; per-wallet failures are recorded and never stop the rest of
// the set.
package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solfleet/solfleet/internal/vault"
)

// Gateway is the chain RPC surface the orchestrator needs.
type Gateway interface {
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error)
	BuildTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error)
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature) (bool, error)
}

// Swapper is the two-step swap-routing surface: best route, then the
// serialized transaction for it.
type Swapper interface {
	BestRoute(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippagePct float64) (json.RawMessage, error)
	BuildSwap(ctx context.Context, route json.RawMessage, user solana.PublicKey, wrapUnwrapSOL bool) (*solana.Transaction, error)
}

// Options tune a batch orchestrator.
type Options struct {
	// RequiredWallets is the exact set size every batch demands.
	RequiredWallets int
	// Workers bounds the per-wallet worker pool.
	Workers int
	// FeeReserveLamports is left untouched on each wallet when buying,
	// so the swap transaction can still pay its fee.
	FeeReserveLamports uint64
}

// Orchestrator executes batch operations over independent wallets.
type Orchestrator struct {
	gateway Gateway
	swapper Swapper
	vault   *vault.Vault
	opts    Options
	log     *zap.Logger
}

// New creates an orchestrator. Workers is clamped to at least 1.
func New(gw Gateway, sw Swapper, v *vault.Vault, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{
		gateway: gw,
		swapper: sw,
		vault:   v,
		opts:    opts,
		log:     log.Named("batch"),
	}
}

// Distribute splits the main wallet's balance evenly (floor) across
// the set and transfers each share.
func (o *Orchestrator) Distribute(ctx context.Context, main *vault.Identity, wallets []*vault.Identity) (Report, error) {
	if err := o.checkSetSize(wallets); err != nil {
		return nil, err
	}

	balance, err := o.gateway.Balance(ctx, main.Address)
	if err != nil {
		return nil, err
	}
	if balance == 0 {
		return nil, ErrZeroBalance
	}

	amountPerWallet := balance / uint64(len(wallets))
	if amountPerWallet == 0 {
		return nil, &InsufficientFundsError{Balance: balance, Wallets: len(wallets)}
	}

	o.log.Info("distributing",
		zap.Uint64("balance", balance),
		zap.Uint64("amountPerWallet", amountPerWallet),
		zap.Int("wallets", len(wallets)))

	return o.forEachWallet(ctx, "distribute", wallets, func(ctx context.Context, id *vault.Identity) Outcome {
		tx, err := o.gateway.BuildTransfer(ctx, main.Address, id.Address, amountPerWallet)
		if err != nil {
			return failed(id, err)
		}
		if err := o.vault.SignTransaction(main, tx); err != nil {
			return failed(id, err)
		}
		return o.submitAndConfirm(ctx, id, tx)
	}), nil
}

// Buy swaps each wallet's spendable SOL into the token at the given
// slippage. The fee reserve stays behind so the swap can pay its fee.
func (o *Orchestrator) Buy(ctx context.Context, wallets []*vault.Identity, mint solana.PublicKey, slippagePct float64) (Report, error) {
	if err := o.checkSetSize(wallets); err != nil {
		return nil, err
	}

	o.log.Info("buying", zap.Stringer("mint", mint), zap.Float64("slippagePct", slippagePct))

	return o.forEachWallet(ctx, "buy", wallets, func(ctx context.Context, id *vault.Identity) Outcome {
		balance, err := o.gateway.Balance(ctx, id.Address)
		if err != nil {
			return failed(id, err)
		}
		if balance <= o.opts.FeeReserveLamports {
			return failed(id, fmt.Errorf("%w: %d lamports", ErrNoFunds, balance))
		}

		route, err := o.swapper.BestRoute(ctx, solana.SolMint, mint, balance-o.opts.FeeReserveLamports, slippagePct)
		if err != nil {
			return failed(id, err)
		}
		tx, err := o.swapper.BuildSwap(ctx, route, id.Address, true)
		if err != nil {
			return failed(id, err)
		}
		if err := o.vault.SignTransaction(id, tx); err != nil {
			return failed(id, err)
		}
		return o.submitAndConfirm(ctx, id, tx)
	}), nil
}

// Sell swaps each wallet's full token-account balance back into SOL.
// Wallets holding none of the token are skipped, not failed.
func (o *Orchestrator) Sell(ctx context.Context, wallets []*vault.Identity, mint solana.PublicKey, slippagePct float64) (Report, error) {
	if err := o.checkSetSize(wallets); err != nil {
		return nil, err
	}

	o.log.Info("selling", zap.Stringer("mint", mint), zap.Float64("slippagePct", slippagePct))

	return o.forEachWallet(ctx, "sell", wallets, func(ctx context.Context, id *vault.Identity) Outcome {
		tokenBalance, err := o.gateway.TokenBalance(ctx, id.Address, mint)
		if err != nil {
			return failed(id, err)
		}
		if tokenBalance == 0 {
			return skipped(id, "no token balance")
		}

		route, err := o.swapper.BestRoute(ctx, mint, solana.SolMint, tokenBalance, slippagePct)
		if err != nil {
			return failed(id, err)
		}
		tx, err := o.swapper.BuildSwap(ctx, route, id.Address, false)
		if err != nil {
			return failed(id, err)
		}
		if err := o.vault.SignTransaction(id, tx); err != nil {
			return failed(id, err)
		}
		return o.submitAndConfirm(ctx, id, tx)
	}), nil
}

// Withdraw transfers every wallet's full balance to the destination.
// Empty wallets are skipped, not failed.
func (o *Orchestrator) Withdraw(ctx context.Context, wallets []*vault.Identity, dest solana.PublicKey) (Report, error) {
	if err := o.checkSetSize(wallets); err != nil {
		return nil, err
	}

	o.log.Info("withdrawing", zap.Stringer("destination", dest))

	return o.forEachWallet(ctx, "withdraw", wallets, func(ctx context.Context, id *vault.Identity) Outcome {
		balance, err := o.gateway.Balance(ctx, id.Address)
		if err != nil {
			return failed(id, err)
		}
		if balance == 0 {
			return skipped(id, "zero balance")
		}

		tx, err := o.gateway.BuildTransfer(ctx, id.Address, dest, balance)
		if err != nil {
			return failed(id, err)
		}
		if err := o.vault.SignTransaction(id, tx); err != nil {
			return failed(id, err)
		}
		return o.submitAndConfirm(ctx, id, tx)
	}), nil
}

func (o *Orchestrator) checkSetSize(wallets []*vault.Identity) error {
	if len(wallets) != o.opts.RequiredWallets {
		return &InsufficientWalletsError{Have: len(wallets), Want: o.opts.RequiredWallets}
	}
	return nil
}

// forEachWallet runs fn over every wallet through a bounded pool.
// Outcomes land at the wallet's own index, so the report preserves
// insertion order regardless of completion order.
func (o *Orchestrator) forEachWallet(ctx context.Context, op string, wallets []*vault.Identity, fn func(context.Context, *vault.Identity) Outcome) Report {
	report := make(Report, len(wallets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, id := range wallets {
		i, id := i, id
		g.Go(func() error {
			report[i] = fn(ctx, id)
			if report[i].Status == StatusFailed {
				o.log.Warn("wallet failed",
					zap.String("op", op),
					zap.String("wallet", id.Name),
					zap.Error(report[i].Err))
			}
			return nil
		})
	}
	// Workers never return errors; failures are recorded per wallet.
	_ = g.Wait()

	o.log.Info("batch finished", zap.String("op", op), zap.Bool("allSucceeded", report.AllSucceeded()))
	return report
}

// submitAndConfirm sends a signed transaction and checks confirmation
// once. Submitted-but-unconfirmed counts as a failure for the wallet;
// the operator decides whether re-running is safe.
func (o *Orchestrator) submitAndConfirm(ctx context.Context, id *vault.Identity, tx *solana.Transaction) Outcome {
	sig, err := o.gateway.Submit(ctx, tx)
	if err != nil {
		return failed(id, err)
	}

	confirmed, err := o.gateway.Confirm(ctx, sig)
	if err != nil {
		return failed(id, err)
	}
	if !confirmed {
		return failed(id, &UnconfirmedError{Signature: sig})
	}

	return Outcome{Wallet: id.Name, Address: id.Address, Status: StatusSuccess, Signature: sig}
}

func failed(id *vault.Identity, err error) Outcome {
	return Outcome{Wallet: id.Name, Address: id.Address, Status: StatusFailed, Err: err}
}

func skipped(id *vault.Identity, reason string) Outcome {
	return Outcome{Wallet: id.Name, Address: id.Address, Status: StatusSkipped, Reason: reason}
}

// Package session owns all process-wide mutable state - main wallet,
// wallet set, active token contract, slippage, withdraw destination,
// onboarding flow - behind a single mutex, and exposes the command
// surface the front-end calls. Batch operations snapshot the state
// they need under the lock and run without holding it; overlapping
// onboarding and batches are rejected rather than interleaved.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/solfleet/solfleet/internal/batch"
	"github.com/solfleet/solfleet/internal/common"
	"github.com/solfleet/solfleet/internal/vault"
	"github.com/solfleet/solfleet/internal/wallet"
)

// Direction selects which slippage value a configuration command targets.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Options configure a session.
type Options struct {
	Capacity        int
	BuySlippagePct  float64
	SellSlippagePct float64
}

// Session is the single owner of all mutable trading state.
type Session struct {
	mu sync.Mutex

	vault   *vault.Vault
	orch    *batch.Orchestrator
	gateway batch.Gateway
	log     *zap.Logger

	set          *wallet.Set
	flow         *wallet.Flow
	main         *vault.Identity
	activeToken  solana.PublicKey
	hasToken     bool
	withdrawDest solana.PublicKey
	hasDest      bool
	buySlippage  float64
	sellSlippage float64
	batchRunning bool
}

// New creates a session with an empty wallet set and the configured
// slippage defaults.
func New(v *vault.Vault, orch *batch.Orchestrator, gw batch.Gateway, opts Options, log *zap.Logger) *Session {
	return &Session{
		vault:        v,
		orch:         orch,
		gateway:      gw,
		log:          log.Named("session"),
		set:          wallet.NewSet(opts.Capacity),
		buySlippage:  opts.BuySlippagePct,
		sellSlippage: opts.SellSlippagePct,
	}
}

// SetMainWallet creates or replaces the main (funding) wallet from
// secret material. The main wallet is never part of the batch set.
func (s *Session) SetMainWallet(secretText string) (string, error) {
	id, err := s.vault.CreateIdentity(secretText)
	if err != nil {
		return "", err
	}
	id.SetName("main")

	s.mu.Lock()
	s.main = id
	s.mu.Unlock()

	s.log.Info("main wallet set", zap.Stringer("address", id.Address))
	return fmt.Sprintf("main wallet set: %s", id.Address), nil
}

// MainWalletStatus returns the main wallet's funding address, its SOL
// balance, and a base64 PNG QR code of the address for deposits.
func (s *Session) MainWalletStatus(ctx context.Context) (address, balanceSOL, qrPNG string, err error) {
	s.mu.Lock()
	main := s.main
	s.mu.Unlock()

	if main == nil {
		return "", "", "", errors.New("no main wallet set")
	}

	lamports, err := s.gateway.Balance(ctx, main.Address)
	if err != nil {
		return "", "", "", err
	}

	qr, err := qrcode.New(main.Address.String(), qrcode.Medium)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return main.Address.String(), common.LamportsToSOL(lamports), base64.StdEncoding.EncodeToString(png), nil
}

// BeginOnboarding resets the wallet set and starts collecting
// (secret, name) pairs. Rejected while a batch is running.
func (s *Session) BeginOnboarding() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batchRunning {
		return "", errors.New("a batch operation is running; try again when it finishes")
	}

	s.flow = wallet.BeginOnboarding(s.vault, s.set)
	return fmt.Sprintf("onboarding started: send the secret for wallet 1 of %d", s.set.Capacity()), nil
}

// SubmitOnboardingSecret feeds a secret to the active flow. A bad
// secret leaves the flow where it was.
func (s *Session) SubmitOnboardingSecret(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.onboardingActiveLocked() {
		return "", errors.New("no onboarding in progress")
	}

	if err := s.flow.SubmitSecret(text); err != nil {
		return "", err
	}
	return fmt.Sprintf("secret accepted: send a name for wallet %d (empty for a default)", s.flow.Index()), nil
}

// SubmitOnboardingName feeds a name to the active flow.
func (s *Session) SubmitOnboardingName(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.onboardingActiveLocked() {
		return "", errors.New("no onboarding in progress")
	}

	if err := s.flow.SubmitName(text); err != nil {
		return "", err
	}

	if s.flow.Phase() == wallet.PhaseComplete {
		return fmt.Sprintf("onboarding complete: %d wallets ready", s.set.Len()), nil
	}
	return fmt.Sprintf("wallet %d of %d saved: send the next secret", s.set.Len(), s.set.Capacity()), nil
}

// CancelOnboarding ends the active flow, discarding partial wallets.
func (s *Session) CancelOnboarding() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.onboardingActiveLocked() {
		return "", errors.New("no onboarding in progress")
	}

	s.flow.Cancel()
	return "onboarding cancelled: wallet set cleared", nil
}

// SetTokenContract sets the mint the buy and sell flows trade.
func (s *Session) SetTokenContract(address string) (string, error) {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("invalid token contract address: %w", err)
	}

	s.mu.Lock()
	s.activeToken = mint
	s.hasToken = true
	s.mu.Unlock()

	return fmt.Sprintf("token contract set: %s", mint), nil
}

// SetWithdrawDestination sets where ConfirmWithdraw sends funds.
func (s *Session) SetWithdrawDestination(address string) (string, error) {
	dest, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}

	s.mu.Lock()
	s.withdrawDest = dest
	s.hasDest = true
	s.mu.Unlock()

	return fmt.Sprintf("withdraw destination set: %s", dest), nil
}

// SetSlippage updates one slippage value. Values outside [0,100] are
// rejected and the prior value stays in place.
func (s *Session) SetSlippage(direction Direction, percentText string) (string, error) {
	pct, err := strconv.ParseFloat(strings.TrimSpace(percentText), 64)
	if err != nil {
		return "", fmt.Errorf("invalid slippage %q: %w", percentText, err)
	}
	if pct < 0 || pct > 100 {
		return "", fmt.Errorf("slippage must be between 0 and 100, got %v", pct)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch direction {
	case DirectionBuy:
		s.buySlippage = pct
	case DirectionSell:
		s.sellSlippage = pct
	default:
		return "", fmt.Errorf("unknown slippage direction %q", direction)
	}
	return fmt.Sprintf("%s slippage set to %v%%", direction, pct), nil
}

// Slippage returns the current (buy, sell) slippage percentages.
func (s *Session) Slippage() (buy, sell float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buySlippage, s.sellSlippage
}

// Distribute splits the main wallet's balance across the set.
func (s *Session) Distribute(ctx context.Context) (string, error) {
	snap, err := s.beginBatch(func() error {
		if s.main == nil {
			return errors.New("no main wallet set")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	defer s.endBatch()

	report, err := s.orch.Distribute(ctx, snap.main, snap.wallets)
	if err != nil {
		return "", err
	}
	return "distribution: " + report.Summary(), nil
}

// ConfirmBuy swaps every wallet's SOL into the active token.
func (s *Session) ConfirmBuy(ctx context.Context) (string, error) {
	snap, err := s.beginBatch(func() error {
		if !s.hasToken {
			return errors.New("no token contract set")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	defer s.endBatch()

	report, err := s.orch.Buy(ctx, snap.wallets, snap.token, snap.buySlippage)
	if err != nil {
		return "", err
	}
	return "buy: " + report.Summary(), nil
}

// ConfirmSell swaps every wallet's token balance back into SOL.
func (s *Session) ConfirmSell(ctx context.Context) (string, error) {
	snap, err := s.beginBatch(func() error {
		if !s.hasToken {
			return errors.New("no token contract set")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	defer s.endBatch()

	report, err := s.orch.Sell(ctx, snap.wallets, snap.token, snap.sellSlippage)
	if err != nil {
		return "", err
	}
	return "sell: " + report.Summary(), nil
}

// ConfirmWithdraw empties every wallet into the configured destination.
func (s *Session) ConfirmWithdraw(ctx context.Context) (string, error) {
	snap, err := s.beginBatch(func() error {
		if !s.hasDest {
			return errors.New("no withdraw destination set")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	defer s.endBatch()

	report, err := s.orch.Withdraw(ctx, snap.wallets, snap.dest)
	if err != nil {
		return "", err
	}
	return "withdraw: " + report.Summary(), nil
}

// Status reports the session's observable state in one string.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.main != nil {
		fmt.Fprintf(&b, "main wallet: %s\n", s.main.Address)
	} else {
		b.WriteString("main wallet: not set\n")
	}
	fmt.Fprintf(&b, "wallet set: %d of %d\n", s.set.Len(), s.set.Capacity())
	if s.hasToken {
		fmt.Fprintf(&b, "token contract: %s\n", s.activeToken)
	} else {
		b.WriteString("token contract: not set\n")
	}
	fmt.Fprintf(&b, "slippage: buy %v%%, sell %v%%", s.buySlippage, s.sellSlippage)
	return b.String()
}

// snapshot is the consistent view a batch runs against.
type snapshot struct {
	main         *vault.Identity
	wallets      []*vault.Identity
	token        solana.PublicKey
	dest         solana.PublicKey
	buySlippage  float64
	sellSlippage float64
}

// beginBatch takes the lock, checks the shared preconditions plus the
// operation-specific one, marks the session busy, and returns a
// consistent snapshot to run against without the lock.
func (s *Session) beginBatch(precondition func() error) (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batchRunning {
		return nil, errors.New("another batch operation is already running")
	}
	if s.onboardingActiveLocked() {
		return nil, errors.New("onboarding is in progress; finish or cancel it first")
	}
	if err := precondition(); err != nil {
		return nil, err
	}

	s.batchRunning = true
	return &snapshot{
		main:         s.main,
		wallets:      s.set.Snapshot(),
		token:        s.activeToken,
		dest:         s.withdrawDest,
		buySlippage:  s.buySlippage,
		sellSlippage: s.sellSlippage,
	}, nil
}

func (s *Session) endBatch() {
	s.mu.Lock()
	s.batchRunning = false
	s.mu.Unlock()
}

func (s *Session) onboardingActiveLocked() bool {
	return s.flow != nil && s.flow.Phase() != wallet.PhaseComplete
}

package handler_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solfleet/solfleet/internal/api"
	"github.com/solfleet/solfleet/internal/batch"
	"github.com/solfleet/solfleet/internal/crypto"
	"github.com/solfleet/solfleet/internal/handler"
	"github.com/solfleet/solfleet/internal/session"
	"github.com/solfleet/solfleet/internal/vault"
)

type stubGateway struct {
	balances map[solana.PublicKey]uint64
	sigSeq   byte
}

func (g *stubGateway) Balance(_ context.Context, addr solana.PublicKey) (uint64, error) {
	return g.balances[addr], nil
}

func (g *stubGateway) TokenBalance(_ context.Context, _, _ solana.PublicKey) (uint64, error) {
	return 0, nil
}

func (g *stubGateway) BuildTransfer(_ context.Context, from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error) {
	return solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		solana.Hash{},
		solana.TransactionPayer(from),
	)
}

func (g *stubGateway) Submit(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
	g.sigSeq++
	var sig solana.Signature
	sig[0] = g.sigSeq
	return sig, nil
}

func (g *stubGateway) Confirm(_ context.Context, _ solana.Signature) (bool, error) {
	return true, nil
}

type stubSwapper struct{}

func (stubSwapper) BestRoute(_ context.Context, _, _ solana.PublicKey, _ uint64, _ float64) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (stubSwapper) BuildSwap(_ context.Context, _ json.RawMessage, user solana.PublicKey, _ bool) (*solana.Transaction, error) {
	return solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, user, user).Build()},
		solana.Hash{},
		solana.TransactionPayer(user),
	)
}

func newServer(t *testing.T, capacity int, gw *stubGateway) *httptest.Server {
	t.Helper()

	key := make([]byte, crypto.KeyLen)
	_, err := rand.Read(key)
	require.NoError(t, err)
	cipher, err := crypto.NewCipher(key)
	require.NoError(t, err)

	v := vault.New(cipher)
	log := zap.NewNop()
	orch := batch.New(gw, stubSwapper{}, v, batch.Options{
		RequiredWallets:    capacity,
		Workers:            2,
		FeeReserveLamports: 5000,
	}, log)
	sess := session.New(v, orch, gw, session.Options{
		Capacity:        capacity,
		BuySlippagePct:  0.5,
		SellSlippagePct: 0.5,
	}, log)

	srv := httptest.NewServer(api.SetupRouter(handler.NewCommandHandler(sess)))
	t.Cleanup(srv.Close)
	return srv
}

func freshSecret(t *testing.T) (string, solana.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	parts := make([]string, len(priv))
	for i, b := range priv {
		parts[i] = fmt.Sprintf("%d", b)
	}
	return "[" + strings.Join(parts, ",") + "]", solana.PublicKeyFromBytes(pub)
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (int, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]string{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestMainWalletEndpoint(t *testing.T) {
	gw := &stubGateway{balances: map[solana.PublicKey]uint64{}}
	srv := newServer(t, 2, gw)

	t.Run("get before set fails", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodGet, "/wallet/main", nil)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, out["error"], "no main wallet")
	})

	secret, addr := freshSecret(t)
	gw.balances[addr] = 1_500_000_000

	t.Run("set", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/wallet/main", map[string]string{"secret": secret})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, out["message"], addr.String())
	})

	t.Run("get reports balance and qr", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodGet, "/wallet/main", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, addr.String(), out["address"])
		assert.Equal(t, "1.500000000", out["balanceSOL"])
		assert.NotEmpty(t, out["qr"])
	})

	t.Run("bad secret", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/wallet/main", map[string]string{"secret": "garbage"})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.NotEmpty(t, out["error"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		status, _ := doJSON(t, srv, http.MethodPut, "/wallet/main", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, status)
	})
}

func TestOnboardingAndDistributeOverHTTP(t *testing.T) {
	gw := &stubGateway{balances: map[solana.PublicKey]uint64{}}
	srv := newServer(t, 2, gw)

	t.Run("secret before begin is rejected", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/onboarding/secret", map[string]string{"text": "[1,2]"})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, out["error"], "no onboarding")
	})

	mainSecret, mainAddr := freshSecret(t)
	gw.balances[mainAddr] = 1000
	status, _ := doJSON(t, srv, http.MethodPost, "/wallet/main", map[string]string{"secret": mainSecret})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, srv, http.MethodPost, "/onboarding/begin", nil)
	require.Equal(t, http.StatusOK, status)

	for i := 0; i < 2; i++ {
		secret, _ := freshSecret(t)
		status, out := doJSON(t, srv, http.MethodPost, "/onboarding/secret", map[string]string{"text": secret})
		require.Equal(t, http.StatusOK, status, out["error"])
		status, out = doJSON(t, srv, http.MethodPost, "/onboarding/name", map[string]string{"text": fmt.Sprintf("w%d", i+1)})
		require.Equal(t, http.StatusOK, status, out["error"])
	}

	t.Run("distribute", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/batch/distribute", nil)
		require.Equal(t, http.StatusOK, status, out["error"])
		assert.Contains(t, out["message"], "all 2 wallets succeeded")
	})

	t.Run("status reports full set", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodGet, "/status", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, out["message"], "wallet set: 2 of 2")
		assert.Contains(t, out["message"], mainAddr.String())
	})
}

func TestConfigEndpoints(t *testing.T) {
	gw := &stubGateway{balances: map[solana.PublicKey]uint64{}}
	srv := newServer(t, 2, gw)

	t.Run("token rejects invalid address", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/token", map[string]string{"address": "not-base58!"})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, out["error"], "invalid token contract")
	})

	t.Run("token accepts a mint", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/token", map[string]string{"address": solana.SolMint.String()})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, out["message"], solana.SolMint.String())
	})

	t.Run("slippage set", func(t *testing.T) {
		status, out := doJSON(t, srv, http.MethodPost, "/slippage", map[string]string{"direction": "buy", "percent": "2.5"})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, out["message"], "2.5")
	})

	t.Run("slippage malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/slippage", strings.NewReader("{not json"))
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("withdraw destination", func(t *testing.T) {
		dest := solana.NewWallet().PublicKey()
		status, out := doJSON(t, srv, http.MethodPost, "/withdraw/destination", map[string]string{"address": dest.String()})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, out["message"], dest.String())
	})
}

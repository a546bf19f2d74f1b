package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// serializedTransfer builds an unsigned transfer and returns it
// base64-encoded, the way the swap service ships transactions.
func serializedTransfer(t *testing.T, payer solana.PublicKey) string {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestBestRoute_FirstRouteWins(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[{"id":"best"},{"id":"second"}]}`)
	}))
	defer srv.Close()

	c := NewSwapClient(srv.URL, "mainnet-beta", zap.NewNop())
	in := solana.NewWallet().PublicKey()
	out := solana.NewWallet().PublicKey()

	route, err := c.BestRoute(context.Background(), in, out, 12345, 0.5)
	require.NoError(t, err)

	var picked struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(route, &picked))
	assert.Equal(t, "best", picked.ID)

	assert.Equal(t, in.String(), gotQuery["inputMint"])
	assert.Equal(t, out.String(), gotQuery["outputMint"])
	assert.Equal(t, "12345", gotQuery["amount"])
	assert.Equal(t, "0.5", gotQuery["slippage"])
	assert.Equal(t, "mainnet-beta", gotQuery["cluster"])
}

func TestBestRoute_NoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := NewSwapClient(srv.URL, "mainnet-beta", zap.NewNop())
	_, err := c.BestRoute(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 1, 0.5)
	require.Error(t, err)
	var noRoute *NoRouteError
	assert.ErrorAs(t, err, &noRoute)
}

func TestBuildSwap_WrapFlag(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	encoded := serializedTransfer(t, user)

	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		// decoding into a non-nil map merges keys, so start fresh per request
		gotBody = map[string]json.RawMessage{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"swapTransaction": encoded})
	}))
	defer srv.Close()

	c := NewSwapClient(srv.URL, "mainnet-beta", zap.NewNop())
	route := json.RawMessage(`{"id":"best"}`)

	t.Run("SOL to token sends the wrap flag", func(t *testing.T) {
		tx, err := c.BuildSwap(context.Background(), route, user, true)
		require.NoError(t, err)
		assert.Equal(t, user, tx.Message.AccountKeys[0])
		assert.JSONEq(t, `true`, string(gotBody["wrapUnwrapSOL"]))
	})

	t.Run("token to SOL omits the wrap flag", func(t *testing.T) {
		_, err := c.BuildSwap(context.Background(), route, user, false)
		require.NoError(t, err)
		_, present := gotBody["wrapUnwrapSOL"]
		assert.False(t, present)
	})
}

func TestBuildSwap_NoTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewSwapClient(srv.URL, "mainnet-beta", zap.NewNop())
	_, err := c.BuildSwap(context.Background(), json.RawMessage(`{}`), solana.NewWallet().PublicKey(), false)
	require.Error(t, err)
	var buildErr *SwapBuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestBuildSwap_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"swapTransaction": "!!not-base64!!"})
	}))
	defer srv.Close()

	c := NewSwapClient(srv.URL, "mainnet-beta", zap.NewNop())
	_, err := c.BuildSwap(context.Background(), json.RawMessage(`{}`), solana.NewWallet().PublicKey(), false)
	var buildErr *SwapBuildError
	assert.ErrorAs(t, err, &buildErr)
}

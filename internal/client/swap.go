package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// NoRouteError indicates the routing service found no path between the
// two mints.
type NoRouteError struct {
	InputMint  string
	OutputMint string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no swap route from %s to %s", e.InputMint, e.OutputMint)
}

// SwapBuildError indicates the routing service did not return a
// serialized transaction for the chosen route.
type SwapBuildError struct {
	Reason string
}

func (e *SwapBuildError) Error() string {
	return "swap build failed: " + e.Reason
}

// quoteResponse is the GET quote payload.
type quoteResponse struct {
	Data []json.RawMessage `json:"data"`
}

// swapRequest is the POST swap payload. The wrap flag is sent only for
// the SOL->token direction, hence the pointer.
type swapRequest struct {
	Route         json.RawMessage `json:"route"`
	UserPublicKey string          `json:"userPublicKey"`
	WrapUnwrapSOL *bool           `json:"wrapUnwrapSOL,omitempty"`
}

// swapResponse is the POST swap payload.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// SwapClient talks to the swap-routing service: quote, then swap
// transaction for the chosen route.
type SwapClient struct {
	baseURL string
	cluster string
	client  *http.Client
	log     *zap.Logger
}

// NewSwapClient creates a new swap-routing client.
func NewSwapClient(baseURL, cluster string, log *zap.Logger) *SwapClient {
	return &SwapClient{
		baseURL: baseURL,
		cluster: cluster,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.Named("swap"),
	}
}

// BestRoute requests a quote and returns the first route the provider
// offers. First route wins; the provider orders by its own scoring.
func (c *SwapClient) BestRoute(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippagePct float64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint.String())
	q.Set("outputMint", outputMint.String())
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippage", strconv.FormatFloat(slippagePct, 'f', -1, 64))
	q.Set("cluster", c.cluster)

	reqURL := fmt.Sprintf("%s/quote?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get quote: status %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}

	if len(quote.Data) == 0 {
		return nil, &NoRouteError{InputMint: inputMint.String(), OutputMint: outputMint.String()}
	}

	c.log.Debug("quote received",
		zap.Stringer("inputMint", inputMint),
		zap.Stringer("outputMint", outputMint),
		zap.Int("routes", len(quote.Data)))
	return quote.Data[0], nil
}

// BuildSwap requests the serialized transaction for a route and decodes
// it into an unsigned, pre-routed transaction ready for local signing.
func (c *SwapClient) BuildSwap(ctx context.Context, route json.RawMessage, user solana.PublicKey, wrapUnwrapSOL bool) (*solana.Transaction, error) {
	payload := swapRequest{
		Route:         route,
		UserPublicKey: user.String(),
	}
	if wrapUnwrapSOL {
		t := true
		payload.WrapUnwrapSOL = &t
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post swap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to post swap: status %d", resp.StatusCode)
	}

	var swap swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&swap); err != nil {
		return nil, fmt.Errorf("failed to decode swap response: %w", err)
	}

	if swap.SwapTransaction == "" {
		return nil, &SwapBuildError{Reason: "provider returned no serialized transaction"}
	}

	raw, err := base64.StdEncoding.DecodeString(swap.SwapTransaction)
	if err != nil {
		return nil, &SwapBuildError{Reason: "serialized transaction is not valid base64"}
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, &SwapBuildError{Reason: "could not decode serialized transaction"}
	}
	return tx, nil
}

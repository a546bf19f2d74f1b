package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
// Note: the cipher key may instead be derived from an interactively
// entered passphrase - see internal/crypto key loading.
type Config struct {
	Port               string  `envconfig:"PORT" default:"8080"`
	SolanaRPCURL       string  `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SwapAPIURL         string  `envconfig:"SWAP_API_URL" default:"https://quote-api.jup.ag"`
	Cluster            string  `envconfig:"SOLANA_CLUSTER" default:"mainnet-beta"`
	CipherKey          string  `envconfig:"CIPHER_KEY"` // base64, 32 bytes
	DemoMode           bool    `envconfig:"DEMO_MODE" default:"false"`
	WalletCapacity     int     `envconfig:"WALLET_CAPACITY" default:"20"`
	BuySlippagePct     float64 `envconfig:"BUY_SLIPPAGE" default:"0.5"`
	SellSlippagePct    float64 `envconfig:"SELL_SLIPPAGE" default:"0.5"`
	BatchWorkers       int     `envconfig:"BATCH_WORKERS" default:"8"`
	FeeReserveLamports uint64  `envconfig:"FEE_RESERVE_LAMPORTS" default:"5000"`
	LogLevel           string  `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.WalletCapacity <= 0 {
		return fmt.Errorf("WALLET_CAPACITY must be positive, got %d", c.WalletCapacity)
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive, got %d", c.BatchWorkers)
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetSwapAPIURL returns the swap-routing service base URL from configuration
func GetSwapAPIURL() string {
	return Get().SwapAPIURL
}

// GetWalletCapacity returns the fixed wallet-set capacity from configuration
func GetWalletCapacity() int {
	return Get().WalletCapacity
}

package main

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/solfleet/solfleet/docs"
	"github.com/solfleet/solfleet/internal/api"
	"github.com/solfleet/solfleet/internal/batch"
	"github.com/solfleet/solfleet/internal/client"
	"github.com/solfleet/solfleet/internal/config"
	"github.com/solfleet/solfleet/internal/crypto"
	"github.com/solfleet/solfleet/internal/handler"
	"github.com/solfleet/solfleet/internal/session"
	"github.com/solfleet/solfleet/internal/vault"
)

// @title           Solfleet API
// @version         1.0
// @description     Multi-wallet batch trading service for Solana.
// @BasePath        /
func main() {
	if err := config.Init(); err != nil {
		panic(err)
	}
	cfg := config.Get()

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	key, err := crypto.LoadKey(cfg.CipherKey, cfg.DemoMode, log)
	if err != nil {
		log.Fatal("failed to load cipher key", zap.Error(err))
	}
	cipher, err := crypto.NewCipher(key)
	clear(key)
	if err != nil {
		log.Fatal("failed to initialize cipher", zap.Error(err))
	}

	v := vault.New(cipher)
	gateway := client.NewSolanaClient(cfg.SolanaRPCURL, log)
	swapper := client.NewSwapClient(cfg.SwapAPIURL, cfg.Cluster, log)

	orch := batch.New(gateway, swapper, v, batch.Options{
		RequiredWallets:    cfg.WalletCapacity,
		Workers:            cfg.BatchWorkers,
		FeeReserveLamports: cfg.FeeReserveLamports,
	}, log)

	sess := session.New(v, orch, gateway, session.Options{
		Capacity:        cfg.WalletCapacity,
		BuySlippagePct:  cfg.BuySlippagePct,
		SellSlippagePct: cfg.SellSlippagePct,
	}, log)

	router := api.SetupRouter(handler.NewCommandHandler(sess))

	log.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("cluster", cfg.Cluster),
		zap.Int("wallet_capacity", cfg.WalletCapacity),
	)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

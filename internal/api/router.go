package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/solfleet/solfleet/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(commands *handler.CommandHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Main wallet
	mux.HandleFunc("/wallet/main", commands.MainWallet)

	// Onboarding
	mux.HandleFunc("/onboarding/begin", commands.BeginOnboarding)
	mux.HandleFunc("/onboarding/secret", commands.OnboardingSecret)
	mux.HandleFunc("/onboarding/name", commands.OnboardingName)
	mux.HandleFunc("/onboarding/cancel", commands.CancelOnboarding)

	// Trading configuration
	mux.HandleFunc("/token", commands.SetToken)
	mux.HandleFunc("/slippage", commands.SetSlippage)
	mux.HandleFunc("/withdraw/destination", commands.SetWithdrawDestination)

	// Batch operations
	mux.HandleFunc("/batch/distribute", commands.Distribute)
	mux.HandleFunc("/batch/buy", commands.Buy)
	mux.HandleFunc("/batch/sell", commands.Sell)
	mux.HandleFunc("/batch/withdraw", commands.Withdraw)

	mux.HandleFunc("/status", commands.Status)

	return mux
}

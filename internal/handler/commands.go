// Package handler maps the HTTP admin surface onto session commands.
// Every command returns a human-readable message string; errors come
// back as {"error": "..."} with a matching status code.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/solfleet/solfleet/internal/model"
	"github.com/solfleet/solfleet/internal/session"
)

// CommandHandler serves the session's command surface.
type CommandHandler struct {
	session *session.Session
}

// NewCommandHandler creates a handler over the given session.
func NewCommandHandler(s *session.Session) *CommandHandler {
	return &CommandHandler{session: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// runCommand handles the POST boilerplate shared by the body-less
// commands.
func (h *CommandHandler) runCommand(w http.ResponseWriter, r *http.Request, cmd func() (string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	msg, err := cmd()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeMessage(w, msg)
}

// MainWallet handles GET and POST /wallet/main
// @Summary      Set or inspect the main wallet
// @Description  POST sets the funding wallet from secret material; GET returns its address, balance and deposit QR
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SecretRequest  true  "Secret material (POST only)"
// @Success      200      {object}  model.MainWalletResponse
// @Router       /wallet/main [post]
func (h *CommandHandler) MainWallet(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		address, balance, qr, err := h.session.MainWalletStatus(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, model.MainWalletResponse{
			Address:    address,
			BalanceSOL: balance,
			QR:         qr,
		})
	case http.MethodPost:
		var req model.SecretRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		msg, err := h.session.SetMainWallet(req.Secret)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeMessage(w, msg)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// BeginOnboarding handles POST /onboarding/begin
// @Summary      Start wallet onboarding
// @Description  Resets the wallet set and starts collecting (secret, name) pairs
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /onboarding/begin [post]
func (h *CommandHandler) BeginOnboarding(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, h.session.BeginOnboarding)
}

// OnboardingSecret handles POST /onboarding/secret
// @Summary      Submit the next wallet secret
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request  body      model.TextRequest  true  "Secret material"
// @Success      200      {object}  model.MessageResponse
// @Router       /onboarding/secret [post]
func (h *CommandHandler) OnboardingSecret(w http.ResponseWriter, r *http.Request) {
	h.runTextCommand(w, r, h.session.SubmitOnboardingSecret)
}

// OnboardingName handles POST /onboarding/name
// @Summary      Submit the next wallet name
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request  body      model.TextRequest  true  "Display name (empty for a default)"
// @Success      200      {object}  model.MessageResponse
// @Router       /onboarding/name [post]
func (h *CommandHandler) OnboardingName(w http.ResponseWriter, r *http.Request) {
	h.runTextCommand(w, r, h.session.SubmitOnboardingName)
}

// CancelOnboarding handles POST /onboarding/cancel
// @Summary      Cancel onboarding, discarding partial wallets
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /onboarding/cancel [post]
func (h *CommandHandler) CancelOnboarding(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, h.session.CancelOnboarding)
}

func (h *CommandHandler) runTextCommand(w http.ResponseWriter, r *http.Request, cmd func(string) (string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := cmd(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeMessage(w, msg)
}

// SetToken handles POST /token
// @Summary      Set the active token contract
// @Description  The buy and sell batches trade this mint
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        request  body      model.AddressRequest  true  "Mint address"
// @Success      200      {object}  model.MessageResponse
// @Router       /token [post]
func (h *CommandHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	h.runAddressCommand(w, r, h.session.SetTokenContract)
}

// SetWithdrawDestination handles POST /withdraw/destination
// @Summary      Set the withdraw destination address
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        request  body      model.AddressRequest  true  "Destination address"
// @Success      200      {object}  model.MessageResponse
// @Router       /withdraw/destination [post]
func (h *CommandHandler) SetWithdrawDestination(w http.ResponseWriter, r *http.Request) {
	h.runAddressCommand(w, r, h.session.SetWithdrawDestination)
}

func (h *CommandHandler) runAddressCommand(w http.ResponseWriter, r *http.Request, cmd func(string) (string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := cmd(req.Address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeMessage(w, msg)
}

// SetSlippage handles POST /slippage
// @Summary      Set buy or sell slippage
// @Description  Percent must be within [0,100]; invalid values leave the prior setting unchanged
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        request  body      model.SlippageRequest  true  "Direction (buy|sell) and percent"
// @Success      200      {object}  model.MessageResponse
// @Router       /slippage [post]
func (h *CommandHandler) SetSlippage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SlippageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	msg, err := h.session.SetSlippage(session.Direction(req.Direction), req.Percent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeMessage(w, msg)
}

// Distribute handles POST /batch/distribute
// @Summary      Distribute the main wallet's balance across the set
// @Tags         batch
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /batch/distribute [post]
func (h *CommandHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, func() (string, error) { return h.session.Distribute(r.Context()) })
}

// Buy handles POST /batch/buy
// @Summary      Swap every wallet's SOL into the active token
// @Tags         batch
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /batch/buy [post]
func (h *CommandHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, func() (string, error) { return h.session.ConfirmBuy(r.Context()) })
}

// Sell handles POST /batch/sell
// @Summary      Swap every wallet's token balance back into SOL
// @Tags         batch
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /batch/sell [post]
func (h *CommandHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, func() (string, error) { return h.session.ConfirmSell(r.Context()) })
}

// Withdraw handles POST /batch/withdraw
// @Summary      Empty every wallet into the configured destination
// @Tags         batch
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /batch/withdraw [post]
func (h *CommandHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, func() (string, error) { return h.session.ConfirmWithdraw(r.Context()) })
}

// Status handles GET /status
// @Summary      Session status
// @Tags         status
// @Produce      json
// @Success      200  {object}  model.MessageResponse
// @Router       /status [get]
func (h *CommandHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeMessage(w, h.session.Status())
}

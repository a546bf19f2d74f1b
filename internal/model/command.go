package model

// SecretRequest carries secret key material for wallet creation.
type SecretRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// TextRequest carries one free-form onboarding input.
type TextRequest struct {
	Text string `json:"text"`
}

// AddressRequest carries a Base58 account or mint address.
type AddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// SlippageRequest selects a direction and the new percentage.
type SlippageRequest struct {
	Direction string `json:"direction" binding:"required"`
	Percent   string `json:"percent" binding:"required"`
}

// MessageResponse is the plain-text result every command returns.
type MessageResponse struct {
	Message string `json:"message"`
}

// MainWalletResponse describes the funding wallet.
type MainWalletResponse struct {
	Address    string `json:"address"`
	BalanceSOL string `json:"balanceSOL"`
	QR         string `json:"qr"` // base64 PNG of the address
}

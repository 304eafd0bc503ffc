package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type HubtelConfig struct {
	MerchantID  string
	APIKey      string
	PosSalesID  string
	StatusURL   string // transaction-status API base
	CheckoutURL string // hosted-checkout initiate endpoint
	CollectURL  string // receive-money (direct collection) API base
	CallbackURL string // where the provider posts confirmations
	ReturnURL   string
}

// TransactionStatus is the normalized result of a provider status query.
// Raw keeps the untouched provider body for operator diagnostics.
type TransactionStatus struct {
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PayerPhone    string          `json:"payerPhone"`
	PayerName     string          `json:"payerName"`
	TransactionID string          `json:"transactionId"`
	ResponseCode  string          `json:"responseCode"`
	Message       string          `json:"message"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

type CheckoutSession struct {
	RedirectURL     string `json:"redirectUrl"`
	CheckoutID      string `json:"checkoutId"`
	ClientReference string `json:"clientReference"`
}

type CollectionReceipt struct {
	Accepted        bool   `json:"accepted"`
	TransactionID   string `json:"transactionId"`
	ClientReference string `json:"clientReference"`
	Message         string `json:"message"`
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vbs_tickets/config"
	"vbs_tickets/model"
	"vbs_tickets/monitoring"

	"github.com/shopspring/decimal"
)

// Hubtel wraps every outbound call to the payment provider. All three
// operations share do(): basic auth, bounded timeout, and typed errors
// carrying the provider's raw body plus a human hint.
type Hubtel struct {
	Config model.HubtelConfig
	client *http.Client
}

func NewHubtel() *Hubtel {
	appURL := config.Config("APP_URL")
	return &Hubtel{
		Config: model.HubtelConfig{
			MerchantID:  config.Config("HUBTEL_MERCHANT_ID"),
			APIKey:      config.Config("HUBTEL_API_KEY"),
			PosSalesID:  config.ConfigOr("HUBTEL_POS_SALES_ID", "002032168"),
			StatusURL:   config.ConfigOr("HUBTEL_STATUS_URL", "https://api-txnstatus.hubtel.com"),
			CheckoutURL: config.ConfigOr("HUBTEL_CHECKOUT_URL", "https://payproxyapi.hubtel.com/items/initiate"),
			CollectURL:  config.ConfigOr("HUBTEL_COLLECT_URL", "https://rmp.hubtel.com/merchantaccount/merchants"),
			CallbackURL: appURL + "/api/payments/collection-callback",
			ReturnURL:   appURL + "/payment-complete",
		},
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// GatewayError carries enough provider detail for the caller to decide retry
// vs. abort, and for an operator to reconcile manually.
type GatewayError struct {
	Operation    string `json:"operation"`
	StatusCode   int    `json:"statusCode"`
	ResponseCode string `json:"responseCode,omitempty"`
	Body         string `json:"body,omitempty"`
	Hint         string `json:"hint,omitempty"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("hubtel %s failed: HTTP %d code=%s %s", e.Operation, e.StatusCode, e.ResponseCode, e.Hint)
}

// Known provider response codes mapped to operator hints.
var gatewayHints = map[string]string{
	"0001": "transaction pending, poll status again later",
	"2001": "duplicate client reference, use a fresh reference",
	"4101": "authentication failure, check merchant id / api key",
	"4103": "permission denied, server IP likely not whitelisted",
	"4505": "invalid request parameters",
}

func gatewayHint(statusCode int, responseCode string) string {
	if hint, ok := gatewayHints[responseCode]; ok {
		return hint
	}
	switch statusCode {
	case http.StatusUnauthorized:
		return "authentication failure, check merchant id / api key"
	case http.StatusForbidden:
		return "server IP likely not permitted on the provider account"
	}
	return ""
}

type statusAPIResponse struct {
	ResponseCode string `json:"responseCode"`
	Message      string `json:"message"`
	Data         struct {
		Status          string          `json:"status"`
		Amount          decimal.Decimal `json:"amount"`
		TransactionID   string          `json:"transactionId"`
		CustomerName    string          `json:"customerName"`
		CustomerMsisdn  string          `json:"customerMsisdn"`
		PaymentMethod   string          `json:"paymentMethod"`
		ClientReference string          `json:"clientReference"`
	} `json:"data"`
}

// CheckStatus queries the transaction-status API by client reference. Used by
// manual resolve and by webhook re-verification.
func (h *Hubtel) CheckStatus(ctx context.Context, reference string) (*model.TransactionStatus, error) {
	endpoint := fmt.Sprintf("%s/transactions/%s/status?clientReference=%s",
		h.Config.StatusURL, url.PathEscape(h.Config.PosSalesID), url.QueryEscape(reference))

	var body statusAPIResponse
	raw, err := h.do(ctx, "check_status", http.MethodGet, endpoint, nil, &body)
	if err != nil {
		return nil, err
	}

	return &model.TransactionStatus{
		Status:        body.Data.Status,
		Amount:        body.Data.Amount,
		PayerPhone:    body.Data.CustomerMsisdn,
		PayerName:     body.Data.CustomerName,
		TransactionID: body.Data.TransactionID,
		ResponseCode:  body.ResponseCode,
		Message:       body.Message,
		Raw:           raw,
	}, nil
}

type checkoutAPIResponse struct {
	Status string `json:"status"`
	Data   struct {
		CheckoutURL string `json:"checkoutUrl"`
		CheckoutID  string `json:"checkoutId"`
	} `json:"data"`
}

// InitiateCheckout starts a hosted-checkout payment. The provider echoes the
// client reference back in its webhook, which is what ties the callback to
// this initiation.
func (h *Hubtel) InitiateCheckout(ctx context.Context, amount decimal.Decimal, clientReference string) (*model.CheckoutSession, error) {
	payload := map[string]any{
		"totalAmount":           amount,
		"description":           "VBS 2025 ticket purchase",
		"callbackUrl":           config.Config("APP_URL") + "/api/payments/webhook",
		"returnUrl":             h.Config.ReturnURL,
		"merchantAccountNumber": h.Config.PosSalesID,
		"clientReference":       clientReference,
	}

	var body checkoutAPIResponse
	if _, err := h.do(ctx, "initiate_checkout", http.MethodPost, h.Config.CheckoutURL, payload, &body); err != nil {
		return nil, err
	}

	return &model.CheckoutSession{
		RedirectURL:     body.Data.CheckoutURL,
		CheckoutID:      body.Data.CheckoutID,
		ClientReference: clientReference,
	}, nil
}

type collectAPIResponse struct {
	ResponseCode string `json:"ResponseCode"`
	Message      string `json:"Message"`
	Data         struct {
		TransactionID string `json:"TransactionId"`
	} `json:"Data"`
}

// InitiateDirectCollection pushes a payment prompt to the subscriber's phone
// on the given mobile-money channel.
func (h *Hubtel) InitiateDirectCollection(ctx context.Context, amount decimal.Decimal, phone, channel, clientReference string) (*model.CollectionReceipt, error) {
	endpoint := fmt.Sprintf("%s/%s/receive/mobilemoney",
		h.Config.CollectURL, url.PathEscape(h.Config.PosSalesID))
	payload := map[string]any{
		"CustomerMsisdn":     phone,
		"Channel":            channel,
		"Amount":             amount,
		"PrimaryCallbackUrl": h.Config.CallbackURL,
		"Description":        "VBS 2025 ticket purchase",
		"ClientReference":    clientReference,
	}

	var body collectAPIResponse
	if _, err := h.do(ctx, "initiate_collection", http.MethodPost, endpoint, payload, &body); err != nil {
		return nil, err
	}

	return &model.CollectionReceipt{
		Accepted:        body.ResponseCode == "0001" || body.ResponseCode == "0000",
		TransactionID:   body.Data.TransactionID,
		ClientReference: clientReference,
		Message:         body.Message,
	}, nil
}

func (h *Hubtel) do(ctx context.Context, operation, method, endpoint string, payload, out any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(h.Config.MerchantID, h.Config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		monitoring.GatewayRequest(operation, "error")
		return nil, &GatewayError{Operation: operation, StatusCode: 0, Hint: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		monitoring.GatewayRequest(operation, "error")
		return nil, &GatewayError{Operation: operation, StatusCode: resp.StatusCode, Hint: "unreadable response body"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		monitoring.GatewayRequest(operation, "error")
		code := extractResponseCode(raw)
		return nil, &GatewayError{
			Operation:    operation,
			StatusCode:   resp.StatusCode,
			ResponseCode: code,
			Body:         string(raw),
			Hint:         gatewayHint(resp.StatusCode, code),
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			monitoring.GatewayRequest(operation, "error")
			return nil, &GatewayError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Body:       string(raw),
				Hint:       "malformed provider response",
			}
		}
	}

	monitoring.GatewayRequest(operation, "ok")
	return raw, nil
}

func extractResponseCode(raw []byte) string {
	var probe struct {
		ResponseCode  string `json:"responseCode"`
		ResponseCode2 string `json:"ResponseCode"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	if probe.ResponseCode != "" {
		return probe.ResponseCode
	}
	return probe.ResponseCode2
}

package service

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ChannelWebhook    = "webhook"
	ChannelCollection = "collection"
	ChannelResolve    = "resolve"
)

// PaymentEvent is the one strict tuple the rest of the engine sees. All the
// tolerance for the provider's shifting field names lives in the adapters
// below, nowhere else.
type PaymentEvent struct {
	Status    string
	Amount    decimal.Decimal
	Reference string
	Phone     string
	Name      string
	Channel   string
}

// successStatuses are the recognized provider success sentinels, compared
// case-insensitively.
var successStatuses = map[string]bool{
	"success":    true,
	"successful": true,
	"completed":  true,
}

func IsSuccessStatus(status string) bool {
	return successStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// ParseWebhookPayload adapts a generic payment-notification body. Hubtel has
// shipped several payload shapes over time (top-level vs Data-wrapped,
// Pascal vs camel case), so every known alias is tried in order.
func ParseWebhookPayload(raw []byte) PaymentEvent {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return PaymentEvent{Channel: ChannelWebhook}
	}

	data, _ := dig(payload, "Data").(map[string]any)

	ev := PaymentEvent{Channel: ChannelWebhook}
	ev.Status = firstString(
		dig(payload, "Status"), dig(payload, "status"),
		dig(data, "status"), dig(data, "Status"),
	)
	ev.Amount = firstAmount(
		dig(payload, "Amount"), dig(payload, "amount"),
		dig(data, "Amount"), dig(data, "amount"),
	)
	ev.Reference = firstString(
		dig(payload, "TransactionId"), dig(payload, "transactionId"),
		dig(data, "TransactionId"), dig(data, "transactionId"),
		dig(payload, "CheckoutId"), dig(payload, "checkoutId"),
		dig(payload, "ClientReference"), dig(payload, "clientReference"),
		dig(data, "ClientReference"), dig(data, "clientReference"),
		dig(payload, "Reference"), dig(payload, "reference"),
	)
	ev.Phone = strings.TrimSpace(firstString(
		dig(payload, "CustomerMsisdn"), dig(payload, "customerMsisdn"),
		dig(payload, "Customer", "Msisdn"), dig(payload, "customer", "phoneNumber"),
		dig(data, "customer", "phoneNumber"), dig(data, "CustomerMsisdn"),
	))
	ev.Name = firstString(
		dig(payload, "CustomerName"), dig(payload, "customerName"),
		dig(payload, "Customer", "Name"), dig(payload, "customer", "name"),
		dig(data, "customer", "name"),
	)
	return ev
}

// ParseCollectionCallback adapts the direct-collection confirmation body.
// This channel signals success via ResponseCode 0000 rather than a status
// word.
func ParseCollectionCallback(raw []byte) PaymentEvent {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return PaymentEvent{Channel: ChannelCollection}
	}

	data, _ := dig(payload, "Data").(map[string]any)

	code := firstString(dig(payload, "ResponseCode"), dig(payload, "responseCode"))
	status := firstString(dig(data, "Status"), dig(data, "status"))
	if status == "" && code == "0000" {
		status = "Success"
	}

	return PaymentEvent{
		Channel: ChannelCollection,
		Status:  status,
		Amount: firstAmount(
			dig(data, "Amount"), dig(data, "amount"),
			dig(payload, "Amount"), dig(payload, "amount"),
		),
		Reference: firstString(
			dig(data, "ClientReference"), dig(data, "clientReference"),
			dig(payload, "ClientReference"), dig(payload, "clientReference"),
			dig(data, "TransactionId"), dig(data, "transactionId"),
		),
		Phone: strings.TrimSpace(firstString(
			dig(data, "Recipient"), dig(data, "recipient"),
			dig(data, "CustomerMsisdn"), dig(data, "customerMsisdn"),
			dig(payload, "CustomerMsisdn"),
		)),
		Name: firstString(
			dig(data, "CustomerName"), dig(data, "customerName"),
			dig(payload, "CustomerName"),
		),
	}
}

// dig walks nested maps, returning nil when any step is missing.
func dig(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[key]
	}
	return cur
}

func firstString(values ...any) string {
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstAmount(values ...any) decimal.Decimal {
	for _, v := range values {
		switch n := v.(type) {
		case float64:
			return decimal.NewFromFloat(n)
		case string:
			if n == "" {
				continue
			}
			if d, err := decimal.NewFromString(n); err == nil {
				return d
			}
		case json.Number:
			if d, err := decimal.NewFromString(n.String()); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}

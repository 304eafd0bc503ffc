package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus("Success"))
	assert.True(t, IsSuccessStatus("SUCCESSFUL"))
	assert.True(t, IsSuccessStatus(" completed "))
	assert.False(t, IsSuccessStatus("Pending"))
	assert.False(t, IsSuccessStatus("Failed"))
	assert.False(t, IsSuccessStatus(""))
}

func TestParseWebhookPayloadPascalCase(t *testing.T) {
	raw := []byte(`{
		"Status": "Success",
		"Amount": 950,
		"TransactionId": "TX-100",
		"CustomerMsisdn": "0241234567",
		"CustomerName": "Ama Mensah"
	}`)

	ev := ParseWebhookPayload(raw)
	assert.Equal(t, ChannelWebhook, ev.Channel)
	assert.Equal(t, "Success", ev.Status)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(950)))
	assert.Equal(t, "TX-100", ev.Reference)
	assert.Equal(t, "0241234567", ev.Phone)
	assert.Equal(t, "Ama Mensah", ev.Name)
}

func TestParseWebhookPayloadDataWrapped(t *testing.T) {
	raw := []byte(`{
		"ResponseCode": "0000",
		"Data": {
			"status": "success",
			"amount": "300.00",
			"clientReference": "VBS123",
			"customer": {"phoneNumber": "+233241234567", "name": "Kofi"}
		}
	}`)

	ev := ParseWebhookPayload(raw)
	assert.Equal(t, "success", ev.Status)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "VBS123", ev.Reference)
	assert.Equal(t, "+233241234567", ev.Phone)
	assert.Equal(t, "Kofi", ev.Name)
}

func TestParseWebhookPayloadPrefersTransactionID(t *testing.T) {
	raw := []byte(`{"TransactionId": "TX-1", "ClientReference": "VBS-REF", "Status": "Success"}`)
	assert.Equal(t, "TX-1", ParseWebhookPayload(raw).Reference)
}

func TestParseWebhookPayloadGarbage(t *testing.T) {
	ev := ParseWebhookPayload([]byte(`not json`))
	assert.Equal(t, ChannelWebhook, ev.Channel)
	assert.Empty(t, ev.Reference)
	assert.True(t, ev.Amount.IsZero())
}

func TestParseCollectionCallbackResponseCodeSuccess(t *testing.T) {
	raw := []byte(`{
		"ResponseCode": "0000",
		"Data": {
			"Amount": 300,
			"ClientReference": "VBSABC",
			"Recipient": "233241234567"
		}
	}`)

	ev := ParseCollectionCallback(raw)
	assert.Equal(t, ChannelCollection, ev.Channel)
	assert.Equal(t, "Success", ev.Status)
	assert.Equal(t, "VBSABC", ev.Reference)
	assert.Equal(t, "233241234567", ev.Phone)
}

func TestParseCollectionCallbackNonZeroCode(t *testing.T) {
	raw := []byte(`{"ResponseCode": "2001", "Data": {"ClientReference": "VBSABC"}}`)
	ev := ParseCollectionCallback(raw)
	assert.Empty(t, ev.Status)
	assert.Equal(t, "VBSABC", ev.Reference)
}

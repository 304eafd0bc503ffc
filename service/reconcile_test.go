package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vbs_tickets/constants"
	"vbs_tickets/model"
	"vbs_tickets/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory TicketStore enforcing the same uniqueness rules
// the database does: ticketId and (reference, unitSeq).
type fakeStore struct {
	mu      sync.Mutex
	rows    []model.Ticket
	nextID  uint
	failure error // returned once by the next Create
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) Create(_ context.Context, t *model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failure != nil {
		err := f.failure
		f.failure = nil
		return err
	}
	for _, r := range f.rows {
		if r.TicketID == t.TicketID {
			return store.ErrDuplicateTicketID
		}
		if r.Reference == t.Reference && r.UnitSeq == t.UnitSeq {
			return store.ErrDuplicateUnit
		}
	}
	f.nextID++
	t.ID = f.nextID
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeStore) CountByReference(_ context.Context, reference string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.Reference == reference {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FindByTicketID(_ context.Context, ticketID string) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].TicketID == ticketID {
			t := f.rows[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByPhone(_ context.Context, norm, raw, last9 string, limit int) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ticket
	for _, r := range f.rows {
		if r.Phone == norm || r.Phone == raw || (last9 != "" && len(r.Phone) >= 9 && r.Phone[len(r.Phone)-9:] == last9) {
			out = append(out, r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FindByPhoneAndAccessCode(_ context.Context, phone, accessCode string) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].Phone == phone && f.rows[i].AccessCode == accessCode {
			t := f.rows[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) TicketIDExists(_ context.Context, ticketID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.TicketID == ticketID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AccessCodeExists(_ context.Context, accessCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.AccessCode == accessCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) PhoneHasTicket(_ context.Context, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, ticketID string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].TicketID == ticketID {
			if s, ok := fields["status"].(string); ok {
				f.rows[i].Status = s
			}
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) MarkUsed(_ context.Context, ticketID, verifiedBy string) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].TicketID != ticketID {
			continue
		}
		if f.rows[i].Used {
			return nil, store.ErrAlreadyUsed
		}
		now := time.Now()
		f.rows[i].Used = true
		f.rows[i].VerifiedAt = &now
		f.rows[i].VerifiedBy = verifiedBy
		t := f.rows[i]
		return &t, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UsedTickets(_ context.Context, limit int) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ticket
	for _, r := range f.rows {
		if r.Used {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, limit, page *int) ([]model.Ticket, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Ticket, len(f.rows))
	copy(out, f.rows)
	return out, int64(len(out)), nil
}

func (f *fakeStore) UpdateByID(_ context.Context, id uint, fields map[string]any) (*model.Ticket, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id uint) error { return store.ErrNotFound }

func (f *fakeStore) Stats(_ context.Context) (*model.Stats, error) { return &model.Stats{}, nil }

func (f *fakeStore) byReference(reference string) []model.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ticket
	for _, r := range f.rows {
		if r.Reference == reference {
			out = append(out, r)
		}
	}
	return out
}

type fakeGateway struct {
	status *model.TransactionStatus
	err    error
	calls  int
}

func (g *fakeGateway) CheckStatus(_ context.Context, reference string) (*model.TransactionStatus, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.status, nil
}

func newTestEngine(st store.TicketStore, gw StatusChecker, cfg EngineConfig) *Engine {
	if cfg.UnitPrice.IsZero() {
		cfg.UnitPrice = decimal.NewFromInt(300)
	}
	if cfg.EventDate == "" {
		cfg.EventDate = "Dec 27, 2025"
		cfg.EventTime = "09:00 AM"
	}
	return NewEngine(st, gw, NewTrail(50, nil), nil, cfg)
}

func event(status string, amount int64, reference, phone string) PaymentEvent {
	return PaymentEvent{
		Channel:   ChannelWebhook,
		Status:    status,
		Amount:    decimal.NewFromInt(amount),
		Reference: reference,
		Phone:     phone,
		Name:      "Test Payer",
	}
}

func TestSettleIssuesFlooredQuantity(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})

	res := e.Settle(context.Background(), event("Success", 950, "REF-950", "0241234567"))

	require.True(t, res.Resolved)
	assert.Equal(t, 3, res.Quantity)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 0, res.ExistingCount)

	rows := st.byReference("REF-950")
	require.Len(t, rows, 3)
	seen := map[int]bool{}
	for _, r := range rows {
		assert.Equal(t, "233241234567", r.Phone)
		assert.Equal(t, constants.STATUS_PAID, r.Status)
		assert.True(t, r.Amount.Equal(decimal.NewFromInt(300)))
		seen[r.UnitSeq] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, seen)
}

func TestSettleReplayIsNoOp(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})
	ev := event("Success", 950, "REF-REPLAY", "0241234567")

	first := e.Settle(context.Background(), ev)
	require.Equal(t, 3, first.Created)

	second := e.Settle(context.Background(), ev)
	assert.True(t, second.Resolved)
	assert.Equal(t, 3, second.ExistingCount)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, st.byReference("REF-REPLAY"), 3)
}

func TestSettleTruncatesPartialUnit(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})

	res := e.Settle(context.Background(), event("Success", 897, "REF-897", "0241234567"))
	assert.Equal(t, 2, res.Created)
}

func TestSettleTopUpCreatesShortfallOnly(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})

	e.Settle(context.Background(), event("Success", 300, "REF-TOPUP", "0241234567"))
	res := e.Settle(context.Background(), event("Success", 900, "REF-TOPUP", "0241234567"))

	assert.Equal(t, 1, res.ExistingCount)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, st.byReference("REF-TOPUP"), 3)
}

func TestSettleGates(t *testing.T) {
	cases := []struct {
		name   string
		ev     PaymentEvent
		reason string
	}{
		{"non-success status", event("Pending", 300, "REF-A", "0241234567"), "status not successful"},
		{"failed status", event("Failed", 300, "REF-B", "0241234567"), "status not successful"},
		{"amount below minimum", event("Success", 150, "REF-C", "0241234567"), "amount below minimum"},
		{"missing phone", event("Success", 300, "REF-D", ""), "missing customer phone"},
		{"symbols-only phone", event("Success", 300, "REF-E", "+- "), "missing customer phone"},
		{"missing reference", event("Success", 300, "", "0241234567"), "missing reference"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newFakeStore()
			e := newTestEngine(st, &fakeGateway{}, EngineConfig{})

			res := e.Settle(context.Background(), tc.ev)
			assert.False(t, res.Resolved)
			assert.Equal(t, tc.reason, res.Reason)
			assert.Empty(t, st.rows)
		})
	}
}

func TestSettleMarkPaidShortcut(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.Create(context.Background(), &model.Ticket{
		TicketID: "VBS-ABC123", Reference: "bulk_import", UnitSeq: 0,
		Phone: "233241234567", Status: "Pending",
	}))

	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})
	res := e.Settle(context.Background(), event("Success", 900, "VBS-ABC123", "0241234567"))

	assert.True(t, res.Resolved)
	assert.True(t, res.MarkedPaid)
	assert.Equal(t, 0, res.Created)

	updated, err := st.FindByTicketID(context.Background(), "VBS-ABC123")
	require.NoError(t, err)
	assert.Equal(t, constants.STATUS_PAID, updated.Status)
	// The shortcut must never mint units, even with a multi-unit amount.
	assert.Len(t, st.rows, 1)
}

func TestSettleRecountsAfterUnitRace(t *testing.T) {
	st := newFakeStore()
	// A concurrent delivery already claimed units 0 and 1 before this run's
	// first insert attempt lands.
	for seq := 0; seq < 2; seq++ {
		require.NoError(t, st.Create(context.Background(), &model.Ticket{
			TicketID: "VBS-PRE" + string(rune('0'+seq)), Reference: "REF-RACE",
			UnitSeq: seq, Phone: "233241234567", Status: constants.STATUS_PAID,
		}))
	}
	st.failure = store.ErrDuplicateUnit

	e := newTestEngine(st, &fakeGateway{}, EngineConfig{})
	res := e.Settle(context.Background(), event("Success", 900, "REF-RACE", "0241234567"))

	assert.True(t, res.Resolved)
	assert.Len(t, st.byReference("REF-RACE"), 3)
}

func TestHandleWebhookTrustedSkipsGateway(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{}
	e := newTestEngine(st, gw, EngineConfig{TrustWebhook: true})

	raw := []byte(`{"Status":"Success","Amount":300,"TransactionId":"TX-T1","CustomerMsisdn":"0241234567"}`)
	e.HandleWebhook(context.Background(), raw, "")

	assert.Equal(t, 0, gw.calls)
	assert.Len(t, st.byReference("TX-T1"), 1)
}

func TestHandleWebhookReVerifiesByDefault(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{status: &model.TransactionStatus{
		Status: "Success", Amount: decimal.NewFromInt(600), PayerPhone: "233241234567",
	}}
	e := newTestEngine(st, gw, EngineConfig{})

	// Claimed amount is inflated; the provider's answer wins.
	raw := []byte(`{"Status":"Success","Amount":9000,"TransactionId":"TX-V1"}`)
	e.HandleWebhook(context.Background(), raw, "")

	assert.Equal(t, 1, gw.calls)
	assert.Len(t, st.byReference("TX-V1"), 2)
}

func TestHandleWebhookGatewayErrorIssuesNothing(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{err: errors.New("timeout")}
	e := newTestEngine(st, gw, EngineConfig{})

	raw := []byte(`{"Status":"Success","Amount":300,"TransactionId":"TX-E1","CustomerMsisdn":"0241234567"}`)
	e.HandleWebhook(context.Background(), raw, "")

	assert.Empty(t, st.rows)
}

func TestHandleWebhookSignature(t *testing.T) {
	// HMAC-SHA256 of `{"a":1}` with secret "topsecret".
	raw := []byte(`{"a":1}`)
	const secret = "topsecret"
	const goodSig = "bf1e6501b7fa928ec2391fea9dd90af3c9ad1b7b1ef6ff319c25940cec746bf8"

	t.Run("required and missing", func(t *testing.T) {
		st := newFakeStore()
		e := newTestEngine(st, &fakeGateway{}, EngineConfig{
			TrustWebhook: true, WebhookSecret: secret, SignatureRequired: true,
		})
		body := []byte(`{"Status":"Success","Amount":300,"TransactionId":"TX-S1","CustomerMsisdn":"0241234567"}`)
		e.HandleWebhook(context.Background(), body, "")
		assert.Empty(t, st.rows)
	})

	t.Run("optional and missing", func(t *testing.T) {
		st := newFakeStore()
		e := newTestEngine(st, &fakeGateway{}, EngineConfig{
			TrustWebhook: true, WebhookSecret: secret, SignatureRequired: false,
		})
		body := []byte(`{"Status":"Success","Amount":300,"TransactionId":"TX-S2","CustomerMsisdn":"0241234567"}`)
		e.HandleWebhook(context.Background(), body, "")
		assert.Len(t, st.byReference("TX-S2"), 1)
	})

	t.Run("present but wrong", func(t *testing.T) {
		st := newFakeStore()
		e := newTestEngine(st, &fakeGateway{}, EngineConfig{
			TrustWebhook: true, WebhookSecret: secret, SignatureRequired: false,
		})
		body := []byte(`{"Status":"Success","Amount":300,"TransactionId":"TX-S3","CustomerMsisdn":"0241234567"}`)
		e.HandleWebhook(context.Background(), body, "deadbeef")
		assert.Empty(t, st.rows)
	})

	t.Run("valid hex compare is case-insensitive", func(t *testing.T) {
		e := newTestEngine(newFakeStore(), &fakeGateway{}, EngineConfig{
			WebhookSecret: secret, SignatureRequired: true,
		})
		assert.True(t, e.signatureValid(raw, goodSig))
		assert.True(t, e.signatureValid(raw, strings.ToUpper(goodSig)))
		assert.False(t, e.signatureValid(raw, "00"+goodSig[2:]))
	})
}

func TestResolveAlwaysQueriesProvider(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{status: &model.TransactionStatus{
		Status: "Success", Amount: decimal.NewFromInt(300),
	}}
	e := newTestEngine(st, gw, EngineConfig{TrustWebhook: true})

	res, err := e.Resolve(context.Background(), "REF-RES", "0241234567", "Ama")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls)
	assert.True(t, res.Resolved)
	assert.Equal(t, 1, res.Created)

	rows := st.byReference("REF-RES")
	require.Len(t, rows, 1)
	assert.Equal(t, "Ama", rows[0].Name)
}

func TestResolvePropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{err: errors.New("provider down")}
	e := newTestEngine(newFakeStore(), gw, EngineConfig{})

	_, err := e.Resolve(context.Background(), "REF-X", "", "")
	assert.Error(t, err)
}

func TestResolveNonSuccessReportsReason(t *testing.T) {
	gw := &fakeGateway{status: &model.TransactionStatus{Status: "Pending", ResponseCode: "0001"}}
	e := newTestEngine(newFakeStore(), gw, EngineConfig{})

	res, err := e.Resolve(context.Background(), "REF-P", "", "")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Equal(t, "status not successful", res.Reason)
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"vbs_tickets/constants"
	"vbs_tickets/helper"
	"vbs_tickets/model"
	"vbs_tickets/monitoring"
	"vbs_tickets/store"

	"github.com/shopspring/decimal"
)

// StatusChecker is the slice of the payment gateway the engine needs: a
// server-to-server transaction status query.
type StatusChecker interface {
	CheckStatus(ctx context.Context, reference string) (*model.TransactionStatus, error)
}

type EngineConfig struct {
	UnitPrice decimal.Decimal
	// MinAmount defaults to UnitPrice when zero.
	MinAmount         decimal.Decimal
	EventDate         string
	EventTime         string
	WebhookSecret     string
	SignatureRequired bool
	// TrustWebhook accepts the webhook payload without a second provider
	// status query.
	TrustWebhook bool
}

// Engine converts payment events from any channel into durable, de-duplicated
// ticket rows. It never mutates tickets after creation; check-in is the
// verification service's job.
type Engine struct {
	store    store.TicketStore
	gateway  StatusChecker
	trail    *Trail
	activity *Activity
	cfg      EngineConfig
}

func NewEngine(st store.TicketStore, gateway StatusChecker, trail *Trail, activity *Activity, cfg EngineConfig) *Engine {
	if cfg.MinAmount.IsZero() {
		cfg.MinAmount = cfg.UnitPrice
	}
	return &Engine{store: st, gateway: gateway, trail: trail, activity: activity, cfg: cfg}
}

func (e *Engine) Trail() *Trail { return e.trail }

// SettleResult reports what one reconciliation run decided.
type SettleResult struct {
	Resolved      bool            `json:"resolved"`
	Reason        string          `json:"reason,omitempty"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Quantity      int             `json:"quantity"`
	ExistingCount int             `json:"existingCount"`
	Created       int             `json:"created"`
	MarkedPaid    bool            `json:"markedPaid,omitempty"`
}

// HandleWebhook reconciles a provider push notification. The HTTP handler
// has already acknowledged the provider; failures here are logged and left
// to provider redelivery or operator resolve.
func (e *Engine) HandleWebhook(ctx context.Context, raw []byte, signature string) {
	monitoring.WebhookReceived(ChannelWebhook)

	ev := ParseWebhookPayload(raw)
	e.trail.Record(model.WebhookEvent{
		Kind: "received", Channel: ev.Channel, Status: ev.Status,
		Amount: ev.Amount.String(), Reference: ev.Reference, Phone: ev.Phone,
	})

	if ev.Reference == "" {
		e.gateFailure(ev, "missing transaction reference")
		return
	}
	if !e.signatureValid(raw, signature) {
		e.gateFailure(ev, "signature mismatch")
		return
	}

	if !e.cfg.TrustWebhook {
		status, err := e.gateway.CheckStatus(ctx, ev.Reference)
		if err != nil {
			log.Printf("webhook re-verify failed for %s: %v", ev.Reference, err)
			e.trail.Record(model.WebhookEvent{
				Kind: "error", Channel: ev.Channel, Reference: ev.Reference,
				Note: "provider verification failed: " + err.Error(),
			})
			return
		}
		verified := PaymentEvent{
			Channel:   ev.Channel,
			Status:    status.Status,
			Amount:    status.Amount,
			Reference: ev.Reference,
			Phone:     firstNonEmpty(status.PayerPhone, ev.Phone),
			Name:      firstNonEmpty(status.PayerName, ev.Name),
		}
		e.Settle(ctx, verified)
		return
	}

	e.Settle(ctx, ev)
}

// HandleCollectionCallback reconciles a direct-collection confirmation. The
// channel is a direct server-to-server confirmation, not a generic
// notification, so the payload is pre-trusted.
func (e *Engine) HandleCollectionCallback(ctx context.Context, raw []byte) {
	monitoring.WebhookReceived(ChannelCollection)

	ev := ParseCollectionCallback(raw)
	e.trail.Record(model.WebhookEvent{
		Kind: "received", Channel: ev.Channel, Status: ev.Status,
		Amount: ev.Amount.String(), Reference: ev.Reference, Phone: ev.Phone,
	})

	if ev.Reference == "" {
		e.gateFailure(ev, "missing client reference")
		return
	}
	e.Settle(ctx, ev)
}

// Resolve is the operator-driven path: never trusts a payload, always asks
// the provider.
func (e *Engine) Resolve(ctx context.Context, clientReference, phone, name string) (*SettleResult, error) {
	monitoring.WebhookReceived(ChannelResolve)

	status, err := e.gateway.CheckStatus(ctx, clientReference)
	if err != nil {
		return nil, err
	}

	ev := PaymentEvent{
		Channel:   ChannelResolve,
		Status:    status.Status,
		Amount:    status.Amount,
		Reference: clientReference,
		Phone:     firstNonEmpty(status.PayerPhone, phone),
		Name:      firstNonEmpty(status.PayerName, name),
	}
	return e.Settle(ctx, ev), nil
}

// Settle runs the shared decision core in strict gate order: status, mark-paid
// shortcut, amount, phone, unit computation, idempotent issuance loop.
// Re-running it with the same event after tickets exist is a no-op.
func (e *Engine) Settle(ctx context.Context, ev PaymentEvent) *SettleResult {
	res := &SettleResult{Status: ev.Status, Amount: ev.Amount}

	if ev.Reference == "" {
		return e.fail(res, ev, "missing reference")
	}
	if !IsSuccessStatus(ev.Status) {
		return e.fail(res, ev, "status not successful")
	}

	// Mark-paid shortcut: a checkout initiated with a ticketId as its client
	// reference confirms an existing ticket; never fall through to unit
	// issuance for those.
	if existing, err := e.store.FindByTicketID(ctx, ev.Reference); err == nil {
		if err := e.store.UpdateStatus(ctx, existing.TicketID, map[string]any{"status": constants.STATUS_PAID}); err != nil {
			log.Printf("mark-paid update failed for %s: %v", existing.TicketID, err)
			return e.fail(res, ev, "mark-paid update failed")
		}
		res.Resolved = true
		res.MarkedPaid = true
		e.trail.Record(model.WebhookEvent{
			Kind: "mark_paid", Channel: ev.Channel, Status: ev.Status,
			Amount: ev.Amount.String(), Reference: ev.Reference,
		})
		e.activity.Publish("mark_paid", map[string]any{"ticketId": existing.TicketID})
		return res
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("mark-paid lookup failed for %s: %v", ev.Reference, err)
		return e.fail(res, ev, "store lookup failed")
	}

	if ev.Amount.LessThan(e.cfg.MinAmount) {
		return e.fail(res, ev, "amount below minimum")
	}
	phone := helper.NormalizePhone(ev.Phone)
	if phone == "" {
		return e.fail(res, ev, "missing customer phone")
	}

	quantity := int(ev.Amount.Div(e.cfg.UnitPrice).IntPart())
	if quantity < 1 {
		return e.fail(res, ev, "amount below unit price")
	}

	existing, err := e.store.CountByReference(ctx, ev.Reference)
	if err != nil {
		log.Printf("count by reference failed for %s: %v", ev.Reference, err)
		return e.fail(res, ev, "store count failed")
	}

	res.Quantity = quantity
	res.ExistingCount = int(existing)
	e.trail.Record(model.WebhookEvent{
		Kind: "process", Channel: ev.Channel, Status: ev.Status,
		Amount: ev.Amount.String(), Reference: ev.Reference, Phone: phone,
		Quantity: quantity, ExistingCount: int(existing),
	})

	res.Created = e.issueUnits(ctx, ev, phone, int(existing), quantity)
	res.Resolved = true

	if res.Created > 0 {
		monitoring.TicketsIssued(ev.Channel, res.Created)
		e.activity.Publish("issued", map[string]any{
			"reference": ev.Reference,
			"phone":     phone,
			"created":   res.Created,
			"quantity":  quantity,
		})
	}
	return res
}

// issueUnits creates the shortfall between existing and quantity, one
// conditional insert per unit. Losing a (reference, unitSeq) race means a
// concurrent delivery claimed the unit: recount and carry on. Partial failure
// is safe because the next reconciliation recomputes the shortfall.
func (e *Engine) issueUnits(ctx context.Context, ev PaymentEvent, phone string, existing, quantity int) int {
	created := 0
	idRetries := 0
	for seq := existing; seq < quantity; {
		ticketID, err := helper.GenerateTicketID(func(id string) (bool, error) {
			return e.store.TicketIDExists(ctx, id)
		})
		if err != nil {
			log.Printf("ticket id generation failed for %s: %v", ev.Reference, err)
			break
		}

		t := model.Ticket{
			TicketID:   ticketID,
			AccessCode: helper.GenerateAccessCode(),
			Name:       ev.Name,
			Phone:      phone,
			Amount:     e.cfg.UnitPrice,
			TicketType: constants.TICKET_TYPE_REGULAR,
			Status:     constants.STATUS_PAID,
			Reference:  ev.Reference,
			UnitSeq:    seq,
			EventDate:  e.cfg.EventDate,
			EventTime:  e.cfg.EventTime,
		}

		switch err := e.store.Create(ctx, &t); {
		case err == nil:
			created++
			seq++
			idRetries = 0
		case errors.Is(err, store.ErrDuplicateTicketID):
			// Pre-filter lost to a concurrent generator; try a fresh id.
			idRetries++
			if idRetries > 5 {
				log.Printf("giving up on ticket id collisions for %s", ev.Reference)
				return created
			}
		case errors.Is(err, store.ErrDuplicateUnit):
			n, cErr := e.store.CountByReference(ctx, ev.Reference)
			if cErr != nil {
				log.Printf("recount failed for %s: %v", ev.Reference, cErr)
				return created
			}
			if int(n) >= quantity {
				return created
			}
			seq = int(n)
		default:
			log.Printf("ticket create failed for %s unit %d: %v", ev.Reference, seq, err)
			return created
		}
	}
	return created
}

func (e *Engine) signatureValid(raw []byte, signature string) bool {
	if e.cfg.WebhookSecret == "" || signature == "" {
		return !e.cfg.SignatureRequired
	}
	mac := hmac.New(sha256.New, []byte(e.cfg.WebhookSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (e *Engine) gateFailure(ev PaymentEvent, reason string) {
	monitoring.GateFailure(reason)
	e.trail.Record(model.WebhookEvent{
		Kind: "gate_failure", Channel: ev.Channel, Status: ev.Status,
		Amount: ev.Amount.String(), Reference: ev.Reference, Note: reason,
	})
	log.Printf("reconciliation gate failure (%s): %s", ev.Channel, reason)
}

func (e *Engine) fail(res *SettleResult, ev PaymentEvent, reason string) *SettleResult {
	res.Reason = reason
	e.gateFailure(ev, reason)
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

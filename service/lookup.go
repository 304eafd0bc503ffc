package service

import (
	"context"
	"strings"

	"vbs_tickets/helper"
	"vbs_tickets/model"
	"vbs_tickets/store"
)

const lookupPageSize = 25

// Lookup is the read-only customer/admin query surface.
type Lookup struct {
	store store.TicketStore
}

func NewLookup(st store.TicketStore) *Lookup {
	return &Lookup{store: st}
}

// ByPhone matches the normalized form, the raw input, and a last-9-digit
// suffix so minor formatting divergence between stored and queried numbers
// still finds the ticket. Most recent first, capped at one page.
func (l *Lookup) ByPhone(ctx context.Context, phone string) ([]model.Ticket, error) {
	raw := strings.TrimSpace(phone)
	norm := helper.NormalizePhone(raw)
	return l.store.FindByPhone(ctx, norm, raw, helper.PhoneSuffix(norm), lookupPageSize)
}

// ByAccessCode is the self-serve "view my ticket" flow: exact match on
// normalized phone plus uppercased access code, at most one record.
func (l *Lookup) ByAccessCode(ctx context.Context, phone, accessCode string) (*model.Ticket, error) {
	norm := helper.NormalizePhone(strings.TrimSpace(phone))
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	return l.store.FindByPhoneAndAccessCode(ctx, norm, code)
}

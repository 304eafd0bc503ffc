package store

import (
	"context"
	"errors"

	"vbs_tickets/model"
)

var (
	ErrNotFound          = errors.New("ticket not found")
	ErrAlreadyUsed       = errors.New("ticket already used")
	ErrDuplicateTicketID = errors.New("ticket id already exists")
	// ErrDuplicateUnit means another delivery of the same payment already
	// claimed this (reference, unitSeq) slot.
	ErrDuplicateUnit = errors.New("payment unit already issued")
)

// TicketStore is the persistence surface the reconciliation engine and the
// verification/lookup services run against. Create is the final authority on
// ticketId uniqueness and on the (reference, unitSeq) claim.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	CountByReference(ctx context.Context, reference string) (int64, error)
	FindByTicketID(ctx context.Context, ticketID string) (*model.Ticket, error)
	FindByPhone(ctx context.Context, norm, raw, last9 string, limit int) ([]model.Ticket, error)
	FindByPhoneAndAccessCode(ctx context.Context, phone, accessCode string) (*model.Ticket, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	AccessCodeExists(ctx context.Context, accessCode string) (bool, error)
	PhoneHasTicket(ctx context.Context, phone string) (bool, error)
	UpdateStatus(ctx context.Context, ticketID string, fields map[string]any) error
	// MarkUsed flips used=false to true in a single conditional update and
	// returns the updated record. ErrNotFound / ErrAlreadyUsed are distinct.
	MarkUsed(ctx context.Context, ticketID, verifiedBy string) (*model.Ticket, error)
	UsedTickets(ctx context.Context, limit int) ([]model.Ticket, error)
	List(ctx context.Context, limit, page *int) ([]model.Ticket, int64, error)
	UpdateByID(ctx context.Context, id uint, fields map[string]any) (*model.Ticket, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*model.Stats, error)
}

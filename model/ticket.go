package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is both the payment record and the ticket: one row per paid unit.
// Reference carries the provider's transaction reference (or a synthetic
// value for admin/bulk paths); UnitSeq is the 0-based unit index within that
// payment. The composite unique index makes the issuance loop a conditional
// insert per unit, so concurrent deliveries of the same payment cannot
// double-issue.
type Ticket struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TicketID   string          `gorm:"size:20;uniqueIndex" json:"ticketId"`
	AccessCode string          `gorm:"size:8" json:"accessCode"`
	Name       string          `gorm:"size:120" json:"name"`
	Phone      string          `gorm:"size:20;index" json:"phone"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	TicketType string          `gorm:"size:12;default:'Regular'" json:"ticketType"`
	Status     string          `gorm:"size:20;default:'Paid'" json:"status"`
	Reference  string          `gorm:"size:64;index:idx_tickets_reference_unit,unique" json:"reference"`
	UnitSeq    int             `gorm:"index:idx_tickets_reference_unit,unique" json:"unitSeq"`
	EventDate  string          `gorm:"size:30" json:"eventDate"`
	EventTime  string          `gorm:"size:30" json:"eventTime"`
	Used       bool            `gorm:"default:false" json:"used"`
	VerifiedAt *time.Time      `json:"verifiedAt,omitempty"`
	VerifiedBy string          `gorm:"size:64" json:"verifiedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TicketSummary is the public shape returned by customer-facing lookups.
// It never exposes VerifiedAt/VerifiedBy.
type TicketSummary struct {
	ID         uint            `json:"id"`
	TicketID   string          `json:"ticketId"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Amount     decimal.Decimal `json:"amount"`
	TicketType string          `json:"ticketType"`
	Status     string          `json:"status"`
	Reference  string          `json:"reference"`
	EventDate  string          `json:"eventDate"`
	EventTime  string          `json:"eventTime"`
	Used       bool            `json:"used"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ResolveInput struct {
	ClientReference string `json:"clientReference" validate:"required,max=64"`
	Phone           string `json:"phone" validate:"required,min=9,max=15"`
	Name            string `json:"name" validate:"omitempty,max=120"`
}

type VerifyInput struct {
	TicketID string `json:"ticketId" validate:"required,max=20"`
}

type LookupInput struct {
	Phone      string `json:"phone" validate:"required,min=9,max=15"`
	AccessCode string `json:"accessCode" validate:"required,len=5"`
}

type CreateManualInput struct {
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,min=9,max=15"`
	Amount     string `json:"amount" validate:"omitempty"`
	Status     string `json:"status" validate:"omitempty,max=20"`
	TicketType string `json:"ticketType" validate:"omitempty,oneof=Regular VIP"`
	Email      string `json:"email" validate:"omitempty,email"`
}

type ImportRow struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	TicketType string `json:"ticketType"`
	Status     string `json:"status"`
	AccessCode string `json:"accessCode"`
}

type ImportInput struct {
	Rows []ImportRow `json:"rows" validate:"required,min=1,max=500"`
}

type ImportResult struct {
	Row      int    `json:"row"`
	Success  bool   `json:"success"`
	TicketID string `json:"ticketId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type UpdateTicketInput struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,min=9,max=15"`
	Status     *string `json:"status" validate:"omitempty,max=20"`
	TicketType *string `json:"ticketType" validate:"omitempty,oneof=Regular VIP"`
	EventDate  *string `json:"eventDate" validate:"omitempty,max=30"`
	EventTime  *string `json:"eventTime" validate:"omitempty,max=30"`
}

type CheckoutInput struct {
	Amount string `json:"amount" validate:"required"`
	Phone  string `json:"phone" validate:"omitempty,min=9,max=15"`
}

type DirectCollectionInput struct {
	Amount  string `json:"amount" validate:"required"`
	Phone   string `json:"phone" validate:"required,min=9,max=15"`
	Channel string `json:"channel" validate:"required,oneof=mtn-gh vodafone-gh tigo-gh airteltigo-gh"`
}

// Stats powers the admin dashboard cards.
type Stats struct {
	TotalTickets int64           `json:"totalTickets"`
	Revenue      decimal.Decimal `json:"revenue"`
	CheckedIn    int64           `json:"checkedIn"`
	TicketsToday int64           `json:"ticketsToday"`
}

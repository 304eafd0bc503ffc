package service

import (
	"context"

	"vbs_tickets/model"
	"vbs_tickets/monitoring"
	"vbs_tickets/store"
)

// Checkin is the gate-scanning service: Issued -> Used, exactly once.
type Checkin struct {
	store    store.TicketStore
	activity *Activity
}

func NewCheckin(st store.TicketStore, activity *Activity) *Checkin {
	return &Checkin{store: st, activity: activity}
}

// Verify marks a ticket used. The store performs the transition as one
// conditional update, so two simultaneous scans cannot both succeed.
// Returns store.ErrNotFound or store.ErrAlreadyUsed as distinct outcomes.
func (c *Checkin) Verify(ctx context.Context, ticketID, verifiedBy string) (*model.Ticket, error) {
	t, err := c.store.MarkUsed(ctx, ticketID, verifiedBy)
	if err != nil {
		monitoring.Checkin("rejected")
		return nil, err
	}

	monitoring.Checkin("verified")
	c.activity.Publish("checkin", map[string]any{
		"ticketId":   t.TicketID,
		"name":       t.Name,
		"verifiedBy": verifiedBy,
	})
	return t, nil
}

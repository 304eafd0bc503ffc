package service

import (
	"sync"
	"time"

	"vbs_tickets/model"
)

// Trail is the bounded in-process audit buffer of recent reconciliation
// events. It is diagnostic only; the ticket store stays authoritative. An
// optional persist hook mirrors entries into the durable webhook_events
// table without blocking the caller.
type Trail struct {
	mu      sync.Mutex
	limit   int
	events  []model.WebhookEvent
	persist func(*model.WebhookEvent)
}

func NewTrail(limit int, persist func(*model.WebhookEvent)) *Trail {
	if limit <= 0 {
		limit = 200
	}
	return &Trail{limit: limit, persist: persist}
}

func (t *Trail) Record(ev model.WebhookEvent) {
	if ev.Ts.IsZero() {
		ev.Ts = time.Now()
	}

	t.mu.Lock()
	t.events = append(t.events, ev)
	if len(t.events) > t.limit {
		t.events = t.events[len(t.events)-t.limit:]
	}
	t.mu.Unlock()

	if t.persist != nil {
		go t.persist(&ev)
	}
}

// Recent returns up to take entries, oldest first, newest last.
func (t *Trail) Recent(take int) []model.WebhookEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	if take <= 0 || take > len(t.events) {
		take = len(t.events)
	}
	out := make([]model.WebhookEvent, take)
	copy(out, t.events[len(t.events)-take:])
	return out
}

func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

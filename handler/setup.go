package handler

import (
	"vbs_tickets/service"
	"vbs_tickets/store"
)

// Package-level collaborators, wired once from main before routes are
// registered.
var (
	tickets store.TicketStore
	engine  *service.Engine
	checkin *service.Checkin
	lookup  *service.Lookup
	gateway *Hubtel
)

func Setup(st store.TicketStore, e *service.Engine, c *service.Checkin, l *service.Lookup, h *Hubtel) {
	tickets = st
	engine = e
	checkin = c
	lookup = l
	gateway = h
}

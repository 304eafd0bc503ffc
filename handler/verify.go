package handler

import (
	"errors"
	"strings"

	"vbs_tickets/config"
	"vbs_tickets/constants"
	"vbs_tickets/model"
	"vbs_tickets/store"
	"vbs_tickets/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminVerify is the gate-scanning check-in: Issued -> Used exactly once.
// 404 and 409 are distinct, deliberate outcomes.
func AdminVerify(c *fiber.Ctx) error {
	input := c.Locals("input").(model.VerifyInput)

	operator := c.Get("X-Operator")
	if operator == "" {
		operator = "admin"
	}

	ticket, err := checkin.Verify(c.Context(), strings.TrimSpace(input.TicketID), operator)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"ok": false, "status": "invalid", "message": constants.TICKET_NOT_FOUND,
		})
	case errors.Is(err, store.ErrAlreadyUsed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"ok": false, "status": "used", "message": constants.TICKET_ALREADY_USED,
		})
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Verification failed", err)
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"status":     "verified",
		"ticketId":   ticket.TicketID,
		"name":       ticket.Name,
		"phone":      ticket.Phone,
		"verifiedAt": ticket.VerifiedAt,
	})
}

// VerifyLogs lists recent check-ins, newest first.
func VerifyLogs(c *fiber.Ctx) error {
	used, err := tickets.UsedTickets(c.Context(), 100)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch logs", err)
	}

	logs := make([]fiber.Map, 0, len(used))
	for _, t := range used {
		logs = append(logs, fiber.Map{
			"ticketId":   t.TicketID,
			"name":       t.Name,
			"phone":      t.Phone,
			"verifiedAt": t.VerifiedAt,
			"verifiedBy": t.VerifiedBy,
		})
	}
	return c.JSON(fiber.Map{"data": logs})
}

// PublicVerify handles the QR scan URL. Browsers get redirected to the
// neutral ticket page; API clients only learn whether the ticket exists.
// Used/verified state is never exposed here, only AdminVerify may reveal it.
func PublicVerify(c *fiber.Ctx) error {
	ticketID := c.Params("ticketId")
	ticket, err := tickets.FindByTicketID(c.Context(), ticketID)

	if strings.Contains(c.Get(fiber.HeaderAccept), "text/html") {
		id := ticketID
		if ticket != nil {
			id = ticket.TicketID
		}
		return c.Redirect(config.Config("APP_URL")+"/ticket/"+id, fiber.StatusFound)
	}

	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "message": constants.TICKET_NOT_FOUND})
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to verify ticket", err)
	}

	return c.JSON(fiber.Map{"ok": true, "ticketId": ticket.TicketID})
}

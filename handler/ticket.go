package handler

import (
	"errors"
	"fmt"
	"strings"

	"vbs_tickets/config"
	"vbs_tickets/constants"
	"vbs_tickets/database"
	"vbs_tickets/model"
	"vbs_tickets/store"
	"vbs_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
)

func toSummary(t *model.Ticket) model.TicketSummary {
	var summary model.TicketSummary
	copier.Copy(&summary, t)
	return summary
}

// TicketsByPhone is the public self-serve lookup after payment.
func TicketsByPhone(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Params("phone"))
	if phone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Phone is required", nil)
	}

	found, err := lookup.ByPhone(c.Context(), phone)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to lookup tickets", err)
	}

	summaries := make([]model.TicketSummary, 0, len(found))
	for i := range found {
		summaries = append(summaries, toSummary(&found[i]))
	}
	return c.JSON(fiber.Map{"count": len(summaries), "data": summaries})
}

// LookupTicket is the phone + access code flow, for customers who do not
// know their opaque ticket id.
func LookupTicket(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LookupInput)

	ticket, err := lookup.ByAccessCode(c.Context(), input.Phone, input.AccessCode)
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.INVALID_LOOKUP, nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to lookup ticket", err)
	}

	return c.JSON(fiber.Map{"data": toSummary(ticket)})
}

// GetTicket returns a single public ticket by its id.
func GetTicket(c *fiber.Ctx) error {
	ticket, err := tickets.FindByTicketID(c.Context(), c.Params("ticketId"))
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch ticket", err)
	}

	return c.JSON(fiber.Map{"data": toSummary(ticket)})
}

// TicketQR renders the verification QR for a ticket as PNG. The encoded URL
// is the public verify endpoint, which never leaks used state.
func TicketQR(c *fiber.Ctx) error {
	ticket, err := tickets.FindByTicketID(c.Context(), c.Params("ticketId"))
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch ticket", err)
	}

	verifyURL := fmt.Sprintf("%s/api/tickets/%s/verify", config.Config("APP_URL"), ticket.TicketID)
	png, err := utils.GenerateQRCode(verifyURL, 256)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render QR", err)
	}

	filename := fmt.Sprintf("%s-%s.png", slug.Make(constants.EVENT_TITLE), ticket.TicketID)
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename=`+filename)
	return c.Send(png)
}

// Health checks DB connectivity.
func Health(c *fiber.Ctx) error {
	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}

package handler

import (
	"errors"
	"strconv"
	"strings"

	"vbs_tickets/config"
	"vbs_tickets/constants"
	"vbs_tickets/helper"
	"vbs_tickets/model"
	"vbs_tickets/store"
	"vbs_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func ticketPrice(ticketType string) decimal.Decimal {
	if ticketType == constants.TICKET_TYPE_VIP {
		price, _ := decimal.NewFromString(config.ConfigOr("VIP_TICKET_PRICE", constants.DEFAULT_VIP_PRICE))
		return price
	}
	price, _ := decimal.NewFromString(config.ConfigOr("TICKET_UNIT_PRICE", constants.DEFAULT_UNIT_PRICE))
	return price
}

// AdminPayments lists all tickets, newest first.
func AdminPayments(c *fiber.Ctx) error {
	var pagination model.Pagination
	if err := c.QueryParser(&pagination); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", err)
	}

	rows, total, err := tickets.List(c.Context(), pagination.Limit, pagination.Page)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch payments", err)
	}

	return c.JSON(model.ResponseCustom{
		Rows:       rows,
		Limit:      pagination.Limit,
		Page:       pagination.Page,
		TotalCount: total,
	})
}

// AdminCreate issues a single manual ticket. Manual creation enforces the
// one-ticket-per-phone rule; the payment pipeline's multi-unit issuance does
// not.
func AdminCreate(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateManualInput)

	phone := helper.NormalizePhone(input.Phone)
	if phone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", nil)
	}

	taken, err := tickets.PhoneHasTicket(c.Context(), phone)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create ticket", err)
	}
	if taken {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.PHONE_HAS_TICKET, nil)
	}

	ticketType := input.TicketType
	if ticketType == "" {
		ticketType = constants.TICKET_TYPE_REGULAR
	}
	amount := ticketPrice(ticketType)
	if input.Amount != "" {
		if parsed, err := decimal.NewFromString(input.Amount); err == nil {
			amount = parsed
		}
	}
	status := input.Status
	if status == "" {
		status = constants.STATUS_PAID
	}

	reference := constants.REFERENCE_ADMIN_PREFIX + ticketType
	ticket, err := createSyntheticTicket(c, reference, func() model.Ticket {
		return model.Ticket{
			Name:       input.Name,
			Phone:      phone,
			Amount:     amount,
			TicketType: ticketType,
			Status:     status,
			AccessCode: helper.GenerateAccessCode(),
			EventDate:  config.ConfigOr("EVENT_DATE", constants.DEFAULT_EVENT_DATE),
			EventTime:  config.ConfigOr("EVENT_TIME", constants.DEFAULT_EVENT_TIME),
		}
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create ticket", err)
	}

	if input.Email != "" {
		utils.SendTicketEmail(input.Email, utils.TicketEmailData{
			Name:       ticket.Name,
			TicketID:   ticket.TicketID,
			AccessCode: ticket.AccessCode,
			TicketType: ticket.TicketType,
			EventDate:  ticket.EventDate,
			EventTime:  ticket.EventTime,
			LookupLink: config.Config("APP_URL") + "/ticket/" + ticket.TicketID,
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Ticket created successfully!", "data": ticket})
}

// createSyntheticTicket inserts a ticket under a shared synthetic reference,
// claiming the next free unitSeq and retrying on either unique constraint.
func createSyntheticTicket(c *fiber.Ctx, reference string, build func() model.Ticket) (*model.Ticket, error) {
	ctx := c.Context()
	for attempt := 0; attempt < 10; attempt++ {
		seq, err := tickets.CountByReference(ctx, reference)
		if err != nil {
			return nil, err
		}

		t := build()
		t.Reference = reference
		t.UnitSeq = int(seq)
		t.TicketID, err = helper.GenerateTicketID(func(id string) (bool, error) {
			return tickets.TicketIDExists(ctx, id)
		})
		if err != nil {
			return nil, err
		}

		switch err := tickets.Create(ctx, &t); {
		case err == nil:
			return &t, nil
		case errors.Is(err, store.ErrDuplicateTicketID), errors.Is(err, store.ErrDuplicateUnit):
			continue
		default:
			return nil, err
		}
	}
	return nil, errors.New("could not claim a unit slot")
}

// AdminUpdatePayment edits a restricted set of ticket fields.
func AdminUpdatePayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid id", err)
	}
	input := c.Locals("input").(model.UpdateTicketInput)

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Phone != nil {
		fields["phone"] = helper.NormalizePhone(*input.Phone)
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.TicketType != nil {
		fields["ticket_type"] = *input.TicketType
	}
	if input.EventDate != nil {
		fields["event_date"] = *input.EventDate
	}
	if input.EventTime != nil {
		fields["event_time"] = *input.EventTime
	}
	if len(fields) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Nothing to update", nil)
	}

	ticket, err := tickets.UpdateByID(c.Context(), uint(id), fields)
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": ticket})
}

// AdminDeletePayment removes a ticket row.
func AdminDeletePayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid id", err)
	}

	if err := tickets.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ManualTemplate hands out 100 pre-generated unique access codes for the
// offline ticket desk. Rendering them into a spreadsheet is the admin UI's
// job.
func ManualTemplate(c *fiber.Ctx) error {
	codes := make(map[string]bool, 100)
	for len(codes) < 100 {
		codes[helper.GenerateAccessCode()] = true
	}

	rows := make([]fiber.Map, 0, len(codes))
	for code := range codes {
		rows = append(rows, fiber.Map{
			"name":       "",
			"phone":      "",
			"ticketType": constants.TICKET_TYPE_REGULAR,
			"status":     constants.STATUS_PAID,
			"accessCode": code,
		})
	}
	return c.JSON(fiber.Map{"count": len(rows), "data": rows})
}

// ManualImport bulk-creates tickets from operator-provided rows. Each row
// supplies its own access code; uniqueness of those codes is re-checked here
// before insert (unlike payment-issued codes, which accept collision risk).
func ManualImport(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ImportInput)

	results := make([]model.ImportResult, 0, len(input.Rows))
	for i, row := range input.Rows {
		rowNum := i + 2 // mirrors the spreadsheet rows the desk works from
		ticketID, err := importRow(c, row)
		if err != nil {
			results = append(results, model.ImportResult{Row: rowNum, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, model.ImportResult{Row: rowNum, Success: true, TicketID: ticketID})
	}

	return c.JSON(fiber.Map{"results": results})
}

func importRow(c *fiber.Ctx, row model.ImportRow) (string, error) {
	name := strings.TrimSpace(row.Name)
	phone := helper.NormalizePhone(row.Phone)
	if name == "" || phone == "" {
		return "", errors.New("Name and Phone are required")
	}

	code := strings.ToUpper(strings.TrimSpace(row.AccessCode))
	if code == "" {
		return "", errors.New("Secure Code is required")
	}
	if len(code) != 5 {
		return "", errors.New("Secure Code must be 5 characters")
	}

	ctx := c.Context()
	if taken, err := tickets.PhoneHasTicket(ctx, phone); err != nil {
		return "", err
	} else if taken {
		return "", errors.New("Phone already has a ticket")
	}
	if used, err := tickets.AccessCodeExists(ctx, code); err != nil {
		return "", err
	} else if used {
		return "", errors.New("Secure Code already used")
	}

	ticketType := row.TicketType
	if ticketType != constants.TICKET_TYPE_VIP {
		ticketType = constants.TICKET_TYPE_REGULAR
	}
	status := strings.TrimSpace(row.Status)
	if status == "" {
		status = constants.STATUS_PAID
	}

	ticket, err := createSyntheticTicket(c, constants.REFERENCE_BULK_IMPORT, func() model.Ticket {
		return model.Ticket{
			Name:       name,
			Phone:      phone,
			Amount:     ticketPrice(ticketType),
			TicketType: ticketType,
			Status:     status,
			AccessCode: code,
			EventDate:  config.ConfigOr("EVENT_DATE", constants.DEFAULT_EVENT_DATE),
			EventTime:  config.ConfigOr("EVENT_TIME", constants.DEFAULT_EVENT_TIME),
		}
	})
	if err != nil {
		return "", err
	}
	return ticket.TicketID, nil
}

// AdminStats powers the dashboard cards.
func AdminStats(c *fiber.Ctx) error {
	stats, err := tickets.Stats(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats", err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

// WebhookEvents exposes the bounded in-process audit trail.
func WebhookEvents(c *fiber.Ctx) error {
	take := c.QueryInt("take", 50)
	if take < 1 {
		take = 1
	}
	if take > 200 {
		take = 200
	}

	events := engine.Trail().Recent(take)
	return c.JSON(fiber.Map{"count": len(events), "data": events})
}

// TxnStatus lets an operator query the provider's transaction-status API
// directly, raw body included.
func TxnStatus(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Query("clientReference"))
	if reference == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "clientReference query param is required", nil)
	}

	status, err := gateway.CheckStatus(c.Context(), reference)
	if err != nil {
		return gatewayErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":              true,
		"clientReference": reference,
		"status":          status.Status,
		"amount":          status.Amount,
		"responseCode":    status.ResponseCode,
		"message":         status.Message,
		"raw":             status.Raw,
	})
}

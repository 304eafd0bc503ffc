package handler

import (
	"errors"

	"vbs_tickets/helper"
	"vbs_tickets/model"
	"vbs_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CreateCheckout starts a hosted-checkout session. No ticket row is written
// here: tickets only exist once the provider confirms payment, so a customer
// abandoning checkout leaves nothing behind to clean up.
func CreateCheckout(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CheckoutInput)

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid amount", err)
	}

	session, err := gateway.InitiateCheckout(c.Context(), amount, helper.GenerateClientReference())
	if err != nil {
		return gatewayErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, session)
}

// CreateDirectCollection pushes a payment prompt to the customer's phone on
// the chosen mobile-money channel. Confirmation arrives on the direct
// callback and flows through the reconciliation engine.
func CreateDirectCollection(c *fiber.Ctx) error {
	input := c.Locals("input").(model.DirectCollectionInput)

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid amount", err)
	}

	phone := helper.NormalizePhone(input.Phone)
	if phone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number", nil)
	}

	receipt, err := gateway.InitiateDirectCollection(c.Context(), amount, phone, input.Channel, helper.GenerateClientReference())
	if err != nil {
		return gatewayErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, receipt)
}

// AdminResolve is the operator's manual reconciliation path: query the
// provider for the given client reference and settle whatever it reports.
func AdminResolve(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ResolveInput)

	result, err := engine.Resolve(c.Context(), input.ClientReference, input.Phone, input.Name)
	if err != nil {
		return gatewayErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"resolved":      result.Resolved,
		"reason":        result.Reason,
		"status":        result.Status,
		"amount":        result.Amount,
		"quantity":      result.Quantity,
		"existingCount": result.ExistingCount,
		"created":       result.Created,
		"markedPaid":    result.MarkedPaid,
	})
}

// gatewayErrorResponse passes provider failures through with their raw body
// and hint so admin tooling can show what the provider actually said.
// Customers never reach this path; their endpoints return generic messages.
func gatewayErrorResponse(c *fiber.Ctx, err error) error {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		status := fiber.StatusBadGateway
		if gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
			status = gwErr.StatusCode
		}
		return c.Status(status).JSON(fiber.Map{
			"message": "Payment provider request failed",
			"details": gwErr,
		})
	}
	return utils.ErrorResponse(c, fiber.StatusBadGateway, "Payment provider request failed", err)
}

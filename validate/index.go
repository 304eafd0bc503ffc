package validate

import (
	"vbs_tickets/model"
	"vbs_tickets/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// body parses the request body into dst, validates it, and stores the struct
// in c.Locals("input") for the handler.
func body[T any](c *fiber.Ctx) error {
	var input T

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := validate.Struct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	c.Locals("input", input)
	return c.Next()
}

func Resolve() fiber.Handler {
	return body[model.ResolveInput]
}

func Verify() fiber.Handler {
	return body[model.VerifyInput]
}

func Lookup() fiber.Handler {
	return body[model.LookupInput]
}

func CreateManual() fiber.Handler {
	return body[model.CreateManualInput]
}

func ManualImport() fiber.Handler {
	return body[model.ImportInput]
}

func UpdateTicket() fiber.Handler {
	return body[model.UpdateTicketInput]
}

func Checkout() fiber.Handler {
	return body[model.CheckoutInput]
}

func DirectCollection() fiber.Handler {
	return body[model.DirectCollectionInput]
}

package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HubtelWebhook receives provider payment notifications. Acknowledge-first:
// the provider gets its 200 immediately and reconciliation continues on its
// own goroutine, so provider-side timeouts never turn into retry storms.
// Failures after the ack are logged to the audit trail and recovered via
// provider redelivery or operator resolve.
func HubtelWebhook(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.Body()...)
	signature := c.Get("X-Hubtel-Signature")

	go engine.HandleWebhook(context.Background(), raw, signature)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// DirectCollectionCallback receives direct-collection confirmations. Same
// acknowledge-first contract as the webhook.
func DirectCollectionCallback(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.Body()...)

	go engine.HandleCollectionCallback(context.Background(), raw)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

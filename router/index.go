package router

import (
	"vbs_tickets/handler"
	"vbs_tickets/middleware"
	"vbs_tickets/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())

	api.Get("/health", handler.Health)

	// Provider callbacks. Both acknowledge immediately and reconcile async.
	api.Post("/payments/webhook", handler.HubtelWebhook)
	api.Post("/payments/collection-callback", handler.DirectCollectionCallback)

	payments := api.Group("/payments")
	payments.Post("/checkout", validate.Checkout(), handler.CreateCheckout)
	payments.Post("/direct", validate.DirectCollection(), handler.CreateDirectCollection)

	tickets := api.Group("/tickets")
	tickets.Post("/lookup", validate.Lookup(), handler.LookupTicket)
	tickets.Get("/by-phone/:phone", handler.TicketsByPhone)
	tickets.Get("/:ticketId/verify", handler.PublicVerify)
	tickets.Get("/:ticketId/qr", handler.TicketQR)
	tickets.Get("/:ticketId", handler.GetTicket)

	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.Get("/payments", handler.AdminPayments)
	admin.Post("/payments", validate.CreateManual(), handler.AdminCreate)
	admin.Put("/payments/:id", validate.UpdateTicket(), handler.AdminUpdatePayment)
	admin.Delete("/payments/:id", handler.AdminDeletePayment)
	admin.Post("/resolve", validate.Resolve(), handler.AdminResolve)
	admin.Post("/verify", validate.Verify(), handler.AdminVerify)
	admin.Get("/verify-logs", handler.VerifyLogs)
	admin.Get("/manual-template", handler.ManualTemplate)
	admin.Post("/manual-import", validate.ManualImport(), handler.ManualImport)
	admin.Get("/stats", handler.AdminStats)
	admin.Get("/webhook-events", handler.WebhookEvents)
	admin.Get("/txn-status", handler.TxnStatus)
	admin.Get("/activity", websocket.New(handler.ActivityFeed))
}

package main

import (
	"log"

	"vbs_tickets/config"
	"vbs_tickets/constants"
	"vbs_tickets/database"
	"vbs_tickets/handler"
	"vbs_tickets/helper"
	"vbs_tickets/model"
	"vbs_tickets/monitoring"
	"vbs_tickets/router"
	"vbs_tickets/service"
	"vbs_tickets/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.ConfigOr("CORS_ORIGINS", "*"),
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Admin-Key, X-Operator",
		MaxAge:       600,
	}))

	database.ConnectDB()

	var rdb *redis.Client
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
	}
	handler.SetFeedRedis(rdb)

	tickets := store.NewGormStore(database.DB)
	trail := service.NewTrail(200, func(ev *model.WebhookEvent) {
		if err := database.DB.Create(ev).Error; err != nil {
			log.Printf("audit persist failed: %v", err)
		}
	})
	activity := service.NewActivity(rdb)
	gateway := handler.NewHubtel()

	unitPrice, err := decimal.NewFromString(config.ConfigOr("TICKET_UNIT_PRICE", constants.DEFAULT_UNIT_PRICE))
	if err != nil {
		log.Fatalf("invalid TICKET_UNIT_PRICE: %v", err)
	}
	engine := service.NewEngine(tickets, gateway, trail, activity, service.EngineConfig{
		UnitPrice:         unitPrice,
		EventDate:         config.ConfigOr("EVENT_DATE", constants.DEFAULT_EVENT_DATE),
		EventTime:         config.ConfigOr("EVENT_TIME", constants.DEFAULT_EVENT_TIME),
		WebhookSecret:     config.Config("HUBTEL_WEBHOOK_SECRET"),
		SignatureRequired: config.Config("REQUIRE_WEBHOOK_SIGNATURE") == "true",
		TrustWebhook:      config.Config("TRUST_WEBHOOK_PAYLOAD") == "true",
	})
	checkin := service.NewCheckin(tickets, activity)
	lookup := service.NewLookup(tickets)

	handler.Setup(tickets, engine, checkin, lookup, gateway)
	router.SetupRoutes(app)

	helper.StartAuditScheduler()
	defer helper.StopAuditScheduler()
	helper.StartDailySummaryScheduler()
	defer helper.StopDailySummaryScheduler()

	monitoring.Serve(config.ConfigOr("METRICS_ADDR", ":9100"))

	log.Fatal(app.Listen(":" + config.ConfigOr("PORT", "8002")))
}

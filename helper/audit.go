package helper

import (
	"log"
	"time"

	"vbs_tickets/database"
	"vbs_tickets/model"

	"github.com/robfig/cron/v3"
)

var auditScheduler *cron.Cron

const auditRetention = 14 * 24 * time.Hour

// StartAuditScheduler rotates the durable webhook_events table hourly so the
// audit trail stays bounded independently of request handling.
func StartAuditScheduler() {
	auditScheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := auditScheduler.AddFunc("0 * * * *", rotateAuditEvents)
	if err != nil {
		log.Printf("audit scheduler init failed: %v", err)
		return
	}

	auditScheduler.Start()
	log.Println("Audit rotation scheduler started (hourly)")
}

func rotateAuditEvents() {
	cutoff := time.Now().Add(-auditRetention)
	result := database.DB.Where("ts < ?", cutoff).Delete(&model.WebhookEvent{})
	if result.Error != nil {
		log.Printf("audit rotation failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Rotated %d audit events older than %s", result.RowsAffected, auditRetention)
	}
}

func StopAuditScheduler() {
	if auditScheduler != nil {
		auditScheduler.Stop()
		log.Println("Audit rotation scheduler stopped")
	}
}

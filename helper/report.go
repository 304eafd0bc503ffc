package helper

import (
	"log"
	"time"

	"vbs_tickets/config"
	"vbs_tickets/database"
	"vbs_tickets/model"
	"vbs_tickets/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
)

var summaryScheduler gocron.Scheduler

// SendDailySummary mails the day's sales totals to the configured admin
// address. Skipped silently when ADMIN_EMAIL is unset.
func SendDailySummary() {
	to := config.Config("ADMIN_EMAIL")
	if to == "" {
		return
	}

	db := database.DB
	since := time.Now().Truncate(24 * time.Hour)

	var sold int64
	if err := db.Model(&model.Ticket{}).Where("created_at >= ?", since).Count(&sold).Error; err != nil {
		log.Printf("daily summary: count failed: %v", err)
		return
	}
	var revenue decimal.NullDecimal
	if err := db.Model(&model.Ticket{}).Where("created_at >= ?", since).
		Select("SUM(amount)").Scan(&revenue).Error; err != nil {
		log.Printf("daily summary: revenue failed: %v", err)
		return
	}
	var checkedIn int64
	if err := db.Model(&model.Ticket{}).Where("verified_at >= ?", since).Count(&checkedIn).Error; err != nil {
		log.Printf("daily summary: check-in count failed: %v", err)
		return
	}

	utils.SendDailySummaryEmail(to, utils.DailySummaryData{
		Date:      since.Format("Jan 2, 2006"),
		Sold:      sold,
		Revenue:   revenue.Decimal.StringFixed(2),
		CheckedIn: checkedIn,
	})
}

func StartDailySummaryScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		log.Fatal(err)
	}

	summaryScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(20, 30, 0),
			),
		),
		gocron.NewTask(SendDailySummary),
	)
	if err != nil {
		log.Printf("daily summary scheduler init failed: %v", err)
		return
	}

	s.Start()
	log.Println("Daily summary scheduler started (20:30 UTC)")
}

func StopDailySummaryScheduler() {
	if summaryScheduler != nil {
		_ = summaryScheduler.Shutdown()
	}
}

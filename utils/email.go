package utils

import (
	"bytes"
	"html/template"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// TicketEmailData feeds the ticket confirmation template.
type TicketEmailData struct {
	Name       string
	TicketID   string
	AccessCode string
	TicketType string
	EventDate  string
	EventTime  string
	LookupLink string
}

// DailySummaryData feeds the admin daily sales summary template.
type DailySummaryData struct {
	Date      string
	Sold      int64
	Revenue   string
	CheckedIn int64
}

// SendTicketEmail mails a manually-created ticket to the buyer (async so the
// admin request does not wait on SMTP).
func SendTicketEmail(to string, data TicketEmailData) {
	go sendTemplate(to, "Your VBS 2025 ticket "+data.TicketID, "templates/ticket_email.html", data)
}

func SendDailySummaryEmail(to string, data DailySummaryData) {
	go sendTemplate(to, "VBS ticket sales summary for "+data.Date, "templates/daily_summary.html", data)
}

func sendTemplate(to, subject, tmplPath string, data any) {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("email template load failed: %v", err)
		return
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		log.Printf("email template render failed: %v", err)
		return
	}

	host := os.Getenv("SMTP_HOST")
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(host, port, username, password)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("email send failed: %v", err)
	}
}

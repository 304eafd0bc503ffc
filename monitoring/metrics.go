package monitoring

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webhookEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_events_received_total",
			Help: "Payment events received per channel",
		},
		[]string{"channel"},
	)

	gateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_gate_failures_total",
			Help: "Reconciliation events rejected per gate reason",
		},
		[]string{"reason"},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets issued per channel",
		},
		[]string{"channel"},
	)

	checkins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Check-in attempts per result",
		},
		[]string{"result"},
	)

	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Outbound payment-provider calls per operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

func WebhookReceived(channel string) { webhookEventsReceived.WithLabelValues(channel).Inc() }

func GateFailure(reason string) { gateFailures.WithLabelValues(reason).Inc() }

func Checkin(result string) { checkins.WithLabelValues(result).Inc() }

func GatewayRequest(op, outcome string) { gatewayRequests.WithLabelValues(op, outcome).Inc() }

func TicketsIssued(channel string, n int) { ticketsIssued.WithLabelValues(channel).Add(float64(n)) }

// Serve exposes /metrics on its own listener so scraping never competes with
// the public app.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_events_created_total",
			Help: "number of events created",
		},
	)
	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_registrations_total",
			Help: "number of successful attendee registrations",
		},
	)
	PaymentsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_payments_received_total",
			Help: "number of escrowed payments",
		},
	)
	TicketsMinted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_tickets_minted_total",
			Help: "number of tickets minted",
		},
	)
	TicketsTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_tickets_transferred_total",
			Help: "number of ticket transfers",
		},
	)
	TicketsUsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zicket_tickets_used_total",
			Help: "number of tickets redeemed at check-in",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		EventsCreated,
		Registrations,
		PaymentsReceived,
		TicketsMinted,
		TicketsTransferred,
		TicketsUsed,
	)
}

package lib

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketbari_booking_transitions_total",
			Help: "Booking status transitions applied by the server",
		},
		[]string{"from", "to"},
	)

	LifecycleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketbari_lifecycle_errors_total",
			Help: "Lifecycle operations rejected, by operation and error code",
		},
		[]string{"operation", "code"},
	)

	PaymentConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketbari_payment_confirmations_total",
			Help: "Payment confirmations by outcome (recorded or replayed)",
		},
		[]string{"outcome", "source"},
	)

	AdvertisedTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketbari_advertised_tickets",
			Help: "Tickets currently advertised",
		},
	)
)

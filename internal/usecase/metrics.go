package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabot_orders_placed_total",
		Help: "Orders persisted after a confirmed dialog",
	})

	claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wabot_claims_total",
			Help: "Vendor claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	sendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabot_send_failures_total",
		Help: "Outbound sends that failed and were dropped",
	})
)

package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cuentaclara_settlement_computations_total",
		Help: "Number of group balance summaries computed.",
	})

	gatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cuentaclara_gateway_calls_total",
		Help: "Calls to the payment gateway by operation and outcome.",
	}, []string{"operation", "outcome"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_actions_total",
		Help: "Billable actions handled by the gateway, by kind and outcome.",
	}, []string{"kind", "outcome"})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_side_effect_failures_total",
		Help: "Deduction or notification failures after a successful action.",
	}, []string{"kind", "effect"})

	CreditsDeducted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_credits_deducted_total",
		Help: "Total credits deducted for completed actions.",
	})
)

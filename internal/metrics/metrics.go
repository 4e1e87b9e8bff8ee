package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the airdrop flows.
type Metrics struct {
	RegistrationsTotal     prometheus.Counter
	ClaimsTotal            prometheus.Counter
	TransfersInitiated     prometheus.Counter
	InvalidClaimableAmount prometheus.Counter
}

// New registers all collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "airdrop_registrations_total",
			Help: "Total number of successful airdrop registrations",
		}),
		ClaimsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "airdrop_claims_total",
			Help: "Total number of finalized airdrop claims",
		}),
		TransfersInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "airdrop_transfers_initiated_total",
			Help: "Total number of on-chain transfers submitted",
		}),
		InvalidClaimableAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "airdrop_invalid_claimable_amount_total",
			Help: "Claims rejected because the stored claimable amount is missing or non-positive; indicates a data-integrity bug",
		}),
	}
}

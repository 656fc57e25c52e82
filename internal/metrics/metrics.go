package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RacesCompleted counts races moved to COMPLETED by the settlement engine
	RacesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crypto_racer_races_completed_total",
		Help: "Races marked completed after results were fetched",
	})

	// BetsSettled counts settled bets by outcome
	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_racer_bets_settled_total",
		Help: "Bets resolved to a final outcome",
	}, []string{"result"})

	// PayoutsSubmitted counts payout transfers confirmed on-chain
	PayoutsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crypto_racer_payouts_submitted_total",
		Help: "Winning-bet payouts submitted and confirmed",
	})

	// PayoutsFailed counts payout attempts that will be retried
	PayoutsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crypto_racer_payouts_failed_total",
		Help: "Payout attempts that failed and were released for retry",
	})

	// PayoutsUnrecorded counts transfers that landed on-chain but whose
	// bet could not be marked PAID_OUT. These bets hold their claim (so
	// they are never paid twice) and need operator attention; the payout
	// memo carries the bet id for reconciliation.
	PayoutsUnrecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crypto_racer_payouts_unrecorded_total",
		Help: "Confirmed payout transfers not recorded on their bet",
	})

	// SettlementErrors counts per-race settlement failures
	SettlementErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crypto_racer_settlement_errors_total",
		Help: "Races whose settlement pass failed and will be retried",
	})
)

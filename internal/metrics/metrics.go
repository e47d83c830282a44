package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dare_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Betting
	BetsPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dare_bets_placed_total",
			Help: "Total number of bets recorded",
		},
		[]string{"bet_type"},
	)

	BetsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dare_bets_rejected_total",
			Help: "Total number of bets rejected before persistence",
		},
		[]string{"reason"},
	)

	BetVolumeLamports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dare_bet_volume_lamports_total",
		Help: "Total lamports staked across all bets",
	})

	TxVerificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dare_tx_verification_duration_seconds",
		Help:    "On-chain bet transaction verification duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Payouts
	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dare_payouts_total",
			Help: "Total number of payouts settled",
		},
		[]string{"kind"},
	)

	PayoutLamports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dare_payout_lamports_total",
			Help: "Total lamports paid out",
		},
		[]string{"kind"},
	)

	PayoutsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dare_payouts_failed_total",
			Help: "Total number of rejected or failed payout attempts",
		},
		[]string{"kind", "reason"},
	)

	// Dares
	DaresCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dare_dares_created_total",
		Help: "Total number of dares created",
	})

	ProofsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dare_proofs_submitted_total",
		Help: "Total number of completion proofs accepted",
	})
)

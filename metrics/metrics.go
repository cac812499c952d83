package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PastesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_pastes_created_total",
		Help: "Number of pastes created",
	})
	PastesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_pastes_read_total",
		Help: "Number of paste reads served",
	})
	PastesBurned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_pastes_burned_total",
		Help: "Number of pastes deleted by burn-after-read",
	})
	PastesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_pastes_expired_total",
		Help: "Number of expired pastes deleted on the read path",
	})
	SweepRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_sweep_removed_total",
		Help: "Number of expired pastes removed by cleanup sweeps",
	})
	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_sweep_runs_total",
		Help: "Number of cleanup sweep passes",
	})
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptbin_rate_limited_total",
		Help: "Number of requests rejected by rate limiting",
	})
)

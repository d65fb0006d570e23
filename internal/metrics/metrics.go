package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	StrategyAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "contest_strategy_attempts_total", Help: "Extraction strategy attempts by outcome (hit/empty/error)"},
		[]string{"platform", "strategy", "outcome"},
	)
	SeedFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "contest_seed_fallbacks_total", Help: "Times a platform fell back to seed data"},
		[]string{"platform"},
	)
	RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "contest_records_dropped_total", Help: "Records discarded during extraction or validation"},
		[]string{"platform", "reason"},
	)
	Upserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "contest_upserts_total", Help: "Contest upserts by outcome (created/updated/failed)"},
		[]string{"platform", "outcome"},
	)
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "contest_sync_duration_seconds", Help: "Duration of a full aggregation run", Buckets: prometheus.ExponentialBuckets(0.5, 2, 10)},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(StrategyAttempts, SeedFallbacks, RecordsDropped, Upserts, SyncDuration)
	})
}

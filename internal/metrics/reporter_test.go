package metrics

import (
	"errors"
	"io"
	"testing"

	"ContestSync/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestReporter_CountsOutcomes(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := NewReporter(logger)

	hit := StrategyAttempts.WithLabelValues("codechef", "dom_table", OutcomeHit)
	failed := StrategyAttempts.WithLabelValues("codechef", "api", OutcomeError)
	seeded := SeedFallbacks.WithLabelValues("codechef")
	dropped := RecordsDropped.WithLabelValues("codechef", "unparsable_time")
	beforeHit, beforeFailed := testutil.ToFloat64(hit), testutil.ToFloat64(failed)
	beforeSeed, beforeDrop := testutil.ToFloat64(seeded), testutil.ToFloat64(dropped)

	r.StrategyAttempt(model.PlatformCodeChef, "dom_table", 3, nil)
	r.StrategyAttempt(model.PlatformCodeChef, "api", 0, errors.New("503"))
	r.SeedFallback(model.PlatformCodeChef, 7)
	r.RecordDropped(model.PlatformCodeChef, "unparsable_time", logrus.Fields{"name": "Starters 1"})

	assert.Equal(t, beforeHit+1, testutil.ToFloat64(hit))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	assert.Equal(t, beforeSeed+1, testutil.ToFloat64(seeded))
	assert.Equal(t, beforeDrop+1, testutil.ToFloat64(dropped))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeHit, Outcome(2, errors.New("partial")))
	assert.Equal(t, OutcomeError, Outcome(0, errors.New("down")))
	assert.Equal(t, OutcomeEmpty, Outcome(0, nil))
}

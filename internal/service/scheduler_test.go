package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ContestSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (c *countingRunner) RunAggregation(context.Context) (*model.SyncStats, error) {
	c.calls.Add(1)
	return &model.SyncStats{}, c.err
}

func TestScheduler_RunsOnStartAndOnTick(t *testing.T) {
	runner := &countingRunner{err: errors.New("boom")}
	s := NewScheduler(runner, 20*time.Millisecond, true, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()

	stopped := runner.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, runner.calls.Load())
}

func TestScheduler_NoRunOnStart(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, false, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	s.Wait()

	assert.Zero(t, runner.calls.Load())
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, 0, false, quietLogger())
	assert.Equal(t, DefaultInterval, s.interval)
}

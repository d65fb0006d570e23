package service

import (
	"context"
	"sync"
	"time"

	"ContestSync/internal/model"

	"github.com/sirupsen/logrus"
)

// DefaultInterval 定时聚合的默认间隔
const DefaultInterval = 6 * time.Hour

// Runner 一次聚合运行
type Runner interface {
	RunAggregation(ctx context.Context) (*model.SyncStats, error)
}

// Scheduler 启动时（可选）立即运行一次，之后按固定间隔运行；每次运行在独立goroutine中执行
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runOnStart bool
	logger     *logrus.Logger
	wg         sync.WaitGroup
}

func NewScheduler(runner Runner, interval time.Duration, runOnStart bool, logger *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start 非阻塞；ctx 取消后停止发起新的运行
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Wait 等待调度循环与所有进行中的运行结束
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	s.logger.WithFields(logrus.Fields{
		"interval":     s.interval.String(),
		"run_on_start": s.runOnStart,
	}).Info("聚合调度已启动")

	if s.runOnStart {
		s.spawn(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("聚合调度已停止")
			return
		case <-ticker.C:
			s.spawn(ctx)
		}
	}
}

func (s *Scheduler) spawn(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.runner.RunAggregation(ctx); err != nil {
			s.logger.WithError(err).Warn("定时聚合运行失败")
		}
	}()
}

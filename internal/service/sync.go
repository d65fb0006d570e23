package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ContestSync/internal/metrics"
	"ContestSync/internal/model"
	"ContestSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ContestIndexer 可选的比赛检索索引（对账之后写入）
type ContestIndexer interface {
	IndexContests(ctx context.Context, contests []*model.Contest) error
}

// SyncService 一次完整聚合：抓取 → 对账 → 索引 → 记录运行结果。
// 不持有跨运行的可变状态，可被调度器与手动触发并发调用。
type SyncService struct {
	aggregator *Aggregator
	reconciler *Reconciler
	runs       repository.SyncRunRepository
	indexer    ContestIndexer
	logger     *logrus.Logger
}

// NewSyncService indexer 可为 nil
func NewSyncService(aggregator *Aggregator, reconciler *Reconciler, runs repository.SyncRunRepository, indexer ContestIndexer, logger *logrus.Logger) *SyncService {
	return &SyncService{
		aggregator: aggregator,
		reconciler: reconciler,
		runs:       runs,
		indexer:    indexer,
		logger:     logger,
	}
}

// RunAggregation 执行一次聚合并返回汇总；所有来源都没有数据时返回 ErrNoDataFromAnySource
func (s *SyncService) RunAggregation(ctx context.Context) (*model.SyncStats, error) {
	runID := uuid.NewString()
	started := time.Now().UTC()
	logger := s.logger.WithField("run_id", runID)
	logger.Info("开始聚合比赛数据")
	defer func() {
		metrics.SyncDuration.Observe(time.Since(started).Seconds())
	}()

	stats := &model.SyncStats{RunID: runID}
	agg, err := s.aggregator.Collect(ctx)
	if agg != nil {
		stats.Platforms = agg.Platforms
		stats.Dropped = agg.Dropped
	}
	if err != nil {
		outcome := model.RunOutcomeFailed
		if IsNoData(err) {
			outcome = model.RunOutcomeNoData
		}
		logger.WithError(err).Error("聚合失败，本次运行不写入任何比赛")
		s.saveRun(ctx, runID, outcome, stats, err.Error(), started)
		return stats, err
	}

	rec, stored := s.reconciler.Reconcile(ctx, agg.Contests)
	stats.Total = rec.Total
	stats.Created = rec.Created
	stats.Updated = rec.Updated
	stats.Errors = rec.Errors

	if s.indexer != nil {
		// 只索引成功入库的记录
		if err := s.indexer.IndexContests(ctx, stored); err != nil {
			logger.WithError(err).Warn("写入比赛检索索引失败，不影响本次聚合结果")
		}
	}

	s.saveRun(ctx, runID, model.RunOutcomeOK, stats, "", started)
	logger.WithFields(logrus.Fields{
		"total":     stats.Total,
		"updated":   stats.Updated,
		"created":   stats.Created,
		"errors":    stats.Errors,
		"dropped":   stats.Dropped,
		"platforms": stats.Platforms,
		"elapsed":   time.Since(started).String(),
	}).Info("聚合完成")
	return stats, nil
}

// LatestRun 最近一次运行记录
func (s *SyncService) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	if s.runs == nil {
		return nil, repository.ErrNoSyncRun
	}
	return s.runs.LatestRun(ctx)
}

func (s *SyncService) saveRun(ctx context.Context, runID, outcome string, stats *model.SyncStats, message string, started time.Time) {
	if s.runs == nil {
		return
	}
	platforms, err := json.Marshal(stats.Platforms)
	if err != nil {
		platforms = []byte("{}")
	}
	run := &model.SyncRun{
		RunUUID:    runID,
		Outcome:    outcome,
		Total:      stats.Total,
		Created:    stats.Created,
		Updated:    stats.Updated,
		Errors:     stats.Errors,
		Dropped:    stats.Dropped,
		Platforms:  datatypes.JSON(platforms),
		Message:    message,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	// 运行被取消时仍记录结果
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		s.logger.WithError(err).WithField("run_id", runID).Warn("保存聚合运行记录失败")
	}
}

// ErrAlreadyRunning 手动触发时已有运行在进行
var ErrAlreadyRunning = errors.New("aggregation already running")

// Trigger 手动触发入口：同一时刻只允许一个手动运行，返回 ErrAlreadyRunning 表示被拒绝
type Trigger struct {
	svc  *SyncService
	busy chan struct{}
}

func NewTrigger(svc *SyncService) *Trigger {
	return &Trigger{svc: svc, busy: make(chan struct{}, 1)}
}

func (t *Trigger) Run(ctx context.Context) (*model.SyncStats, error) {
	select {
	case t.busy <- struct{}{}:
	default:
		return nil, fmt.Errorf("手动触发被拒绝: %w", ErrAlreadyRunning)
	}
	defer func() { <-t.busy }()
	return t.svc.RunAggregation(ctx)
}

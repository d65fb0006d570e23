package service

import (
	"context"

	"ContestSync/internal/interfaces"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"

	"github.com/sirupsen/logrus"
)

// ReconcileStats 对账统计；Updated 计入每一次成功的 upsert（新建或合并）
type ReconcileStats struct {
	Total   int
	Created int
	Updated int
	Errors  int
}

// Reconciler 逐条把比赛记录合并进存储
type Reconciler struct {
	repo   interfaces.ContestRepository
	logger *logrus.Logger
}

func NewReconciler(repo interfaces.ContestRepository, logger *logrus.Logger) *Reconciler {
	return &Reconciler{repo: repo, logger: logger}
}

// Reconcile 顺序执行，单条失败只计数并记录日志，不中断后续记录。
// 同一批次内自然键重复时后写入的覆盖先写入的。返回统计与成功入库的记录。
func (r *Reconciler) Reconcile(ctx context.Context, contests []*model.Contest) (*ReconcileStats, []*model.Contest) {
	stats := &ReconcileStats{Total: len(contests)}
	stored := make([]*model.Contest, 0, len(contests))
	for _, c := range contests {
		created, err := r.repo.UpsertContest(ctx, c)
		if err != nil {
			stats.Errors++
			metrics.Upserts.WithLabelValues(c.Platform.Key(), "failed").Inc()
			r.logger.WithError(err).WithFields(logrus.Fields{
				"platform":   c.Platform,
				"name":       c.Name,
				"start_time": c.StartTime,
			}).Error("比赛记录入库失败")
			continue
		}
		stats.Updated++
		stored = append(stored, c)
		outcome := "updated"
		if created {
			stats.Created++
			outcome = "created"
		}
		metrics.Upserts.WithLabelValues(c.Platform.Key(), outcome).Inc()
	}

	r.logger.WithFields(logrus.Fields{
		"total":   stats.Total,
		"created": stats.Created,
		"updated": stats.Updated,
		"errors":  stats.Errors,
	}).Info("比赛对账完成")
	return stats, stored
}

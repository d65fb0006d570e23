package repository

import (
	"context"
	"fmt"
	"time"

	"ContestSync/internal/interfaces"
	"ContestSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 自然键与聚合流水线可覆盖的列（solution_link 不在其中）
var (
	naturalKeyColumns = []clause.Column{{Name: "name"}, {Name: "platform"}, {Name: "start_time"}}
	mergeColumns      = []string{"url", "status", "duration", "end_time", "updated_at"}
)

// ContestRepository 比赛表仓储
type ContestRepository interface {
	interfaces.ContestRepository
	FindContests(ctx context.Context, filter ContestFilter) ([]*model.Contest, error)
	CountContests(ctx context.Context) (int64, error)
}

// ContestFilter 比赛列表筛选
type ContestFilter struct {
	Platforms []string // 平台展示名，为空表示全部
	Status    string   // upcoming/ongoing/past，为空表示全部
}

type contestRepository struct {
	db *gorm.DB
}

func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

// UpsertContest 按自然键合并：已存在则只更新 url/status/duration/end_time/updated_at，
// 不存在则以 solution_link 为空插入。返回是否新建。
func (r *contestRepository) UpsertContest(ctx context.Context, c *model.Contest) (bool, error) {
	created := false
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Contest
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ? AND platform = ? AND start_time = ?", c.Name, c.Platform, c.StartTime).
			Limit(1).
			Find(&existing)
		if res.Error != nil {
			return fmt.Errorf("查询比赛失败: %w", res.Error)
		}

		if res.RowsAffected > 0 {
			if err := tx.Model(&model.Contest{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
				"url":        c.URL,
				"status":     c.Status,
				"duration":   c.Duration,
				"end_time":   c.EndTime,
				"updated_at": now,
			}).Error; err != nil {
				return fmt.Errorf("更新比赛失败: %w", err)
			}
			c.ID = existing.ID
			c.SolutionLink = existing.SolutionLink
			c.CreatedAt = existing.CreatedAt
			c.UpdatedAt = now
			return nil
		}

		// 并发插入时由唯一约束兜底，冲突转为合并更新
		c.ID = 0
		c.SolutionLink = nil
		c.CreatedAt, c.UpdatedAt = now, now
		if err := tx.Clauses(clause.OnConflict{
			Columns:   naturalKeyColumns,
			DoUpdates: clause.AssignmentColumns(mergeColumns),
		}).Create(c).Error; err != nil {
			return fmt.Errorf("插入比赛失败: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", model.ErrReconciliationFailure, c.NaturalKey(), err)
	}
	return created, nil
}

func (r *contestRepository) FindContests(ctx context.Context, filter ContestFilter) ([]*model.Contest, error) {
	query := r.db.WithContext(ctx).Model(&model.Contest{})
	if len(filter.Platforms) > 0 {
		query = query.Where("platform IN ?", filter.Platforms)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var contests []*model.Contest
	if err := query.Order("start_time ASC").Find(&contests).Error; err != nil {
		return nil, fmt.Errorf("查询比赛列表失败: %w", err)
	}
	return contests, nil
}

func (r *contestRepository) CountContests(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Contest{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计比赛数失败: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"ContestSync/internal/model"

	"gorm.io/gorm"
)

// ErrNoSyncRun 尚无任何聚合运行记录
var ErrNoSyncRun = errors.New("no sync run recorded")

// SyncRunRepository 聚合运行记录仓储
type SyncRunRepository interface {
	SaveRun(ctx context.Context, run *model.SyncRun) error
	LatestRun(ctx context.Context) (*model.SyncRun, error)
}

type syncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) SaveRun(ctx context.Context, run *model.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("保存聚合运行记录失败: %w", err)
	}
	return nil
}

func (r *syncRunRepository) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.WithContext(ctx).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSyncRun
	}
	if err != nil {
		return nil, fmt.Errorf("查询最近一次聚合运行失败: %w", err)
	}
	return &run, nil
}

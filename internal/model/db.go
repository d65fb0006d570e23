package model

import (
	"time"

	"gorm.io/datatypes"
)

// 单次聚合运行的结果
const (
	RunOutcomeOK     = "ok"
	RunOutcomeNoData = "no_data"
	RunOutcomeFailed = "failed"
)

// SyncRun 每次聚合运行的汇总记录，供调度方与运维查看
type SyncRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:运行ID"`
	Outcome    string         `gorm:"column:outcome;type:varchar(16);not null;comment:ok/no_data/failed"`
	Total      int            `gorm:"column:total;type:int;default:0;comment:参与入库的记录数"`
	Created    int            `gorm:"column:created;type:int;default:0;comment:新建记录数"`
	Updated    int            `gorm:"column:updated;type:int;default:0;comment:成功upsert记录数"`
	Errors     int            `gorm:"column:errors;type:int;default:0;comment:入库失败数"`
	Dropped    int            `gorm:"column:dropped;type:int;default:0;comment:校验丢弃数"`
	Platforms  datatypes.JSON `gorm:"column:platforms;type:jsonb;comment:各平台抓取数"`
	Message    string         `gorm:"column:message;type:text;comment:失败原因"`
	StartedAt  time.Time      `gorm:"column:started_at;type:timestamptz;not null;comment:开始时间"`
	FinishedAt time.Time      `gorm:"column:finished_at;type:timestamptz;not null;comment:结束时间"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// SyncStats 返回给触发方的汇总统计
type SyncStats struct {
	RunID     string         `json:"run_id"`
	Total     int            `json:"total"`
	Updated   int            `json:"updated"`
	Created   int            `json:"created"`
	Errors    int            `json:"errors"`
	Dropped   int            `json:"dropped"`
	Platforms map[string]int `json:"platforms"`
}

package model

import "time"

// Contest 规范化后的比赛表，自然键 (name, platform, start_time)
// solution_link 仅由外部 CRUD 层写入，聚合流水线从不覆盖
type Contest struct {
	ID           uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string        `gorm:"column:name;type:varchar(256);not null;uniqueIndex:uq_contest_natural_key,priority:1" json:"name"`
	Platform     PlatformType  `gorm:"column:platform;type:varchar(32);not null;index;uniqueIndex:uq_contest_natural_key,priority:2" json:"platform"`
	URL          string        `gorm:"column:url;type:varchar(512);not null" json:"url"`
	StartTime    time.Time     `gorm:"column:start_time;type:timestamptz;not null;index;uniqueIndex:uq_contest_natural_key,priority:3" json:"startTime"`
	EndTime      time.Time     `gorm:"column:end_time;type:timestamptz;not null" json:"endTime"`
	Duration     int           `gorm:"column:duration;type:int;not null" json:"duration"` // 分钟
	Status       ContestStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	SolutionLink *string       `gorm:"column:solution_link;type:varchar(512)" json:"solutionLink"`
	CreatedAt    time.Time     `gorm:"column:created_at;type:timestamptz;default:now()" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;type:timestamptz;default:now()" json:"updatedAt"`
}

func (Contest) TableName() string { return "contests" }

// NaturalKey 自然键，用于日志与内存去重
func (c *Contest) NaturalKey() string {
	return string(c.Platform) + "|" + c.Name + "|" + c.StartTime.UTC().Format(time.RFC3339)
}

package model

import (
	"strings"
	"time"
)

// PlatformType 比赛来源平台枚举（值即入库的 platform 字段）
type PlatformType string

const (
	PlatformCodeforces PlatformType = "Codeforces"
	PlatformCodeChef   PlatformType = "CodeChef"
	PlatformLeetCode   PlatformType = "LeetCode"
)

// AllPlatforms 固定的平台顺序，聚合结果按此顺序拼接
var AllPlatforms = []PlatformType{PlatformCodeforces, PlatformCodeChef, PlatformLeetCode}

// Key 配置文件与统计结果中使用的小写键（codeforces/codechef/leetcode）
func (p PlatformType) Key() string {
	return strings.ToLower(string(p))
}

// ParsePlatform 按小写键或展示名解析平台，不区分大小写
func ParsePlatform(s string) (PlatformType, bool) {
	s = strings.TrimSpace(s)
	for _, p := range AllPlatforms {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// ContestStatus 比赛时间状态
type ContestStatus string

const (
	StatusUpcoming ContestStatus = "upcoming"
	StatusOngoing  ContestStatus = "ongoing"
	StatusPast     ContestStatus = "past"
)

// ClassifyStatus 由 (start, end, now) 推导状态，来源平台自带的状态一律忽略
func ClassifyStatus(start, end, now time.Time) ContestStatus {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusOngoing
	default:
		return StatusPast
	}
}

package leetcode

import (
	"fmt"
	"strings"
	"time"

	"ContestSync/internal/model"
)

const (
	seedWeekly   = 440
	seedBiweekly = 126
)

// seed 所有策略落空时的静态数据：以下一个周六 17:30 UTC 为锚点的周赛与双周赛
func seed(now time.Time) []*model.RawContest {
	now = now.UTC()
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	saturday := time.Date(now.Year(), now.Month(), now.Day()+days, 17, 30, 0, 0, time.UTC)

	var out []*model.RawContest
	add := func(kind string, number int, start time.Time) {
		out = append(out, &model.RawContest{
			Name:      fmt.Sprintf("%s Contest %d", kind, number),
			Platform:  model.PlatformLeetCode,
			URL:       contestURL(fmt.Sprintf("%s-contest-%d", strings.ToLower(kind), number), ""),
			StartTime: start,
			EndTime:   start.Add(defaultDurationMinutes * time.Minute),
			Duration:  defaultDurationMinutes,
		})
	}

	for i := 0; i < 3; i++ {
		weekly := saturday.AddDate(0, 0, 7*i)
		add("Weekly", seedWeekly+i, weekly)
		if i%2 == 0 {
			add("Biweekly", seedBiweekly+i/2, weekly.AddDate(0, 0, -3))
		}
	}
	for i := 1; i <= 5; i++ {
		weekly := saturday.AddDate(0, 0, -7*i)
		add("Weekly", seedWeekly-i, weekly)
		if i%2 == 0 {
			add("Biweekly", seedBiweekly-i/2, weekly.AddDate(0, 0, -3))
		}
	}
	return out
}

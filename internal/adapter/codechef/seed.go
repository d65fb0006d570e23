package codechef

import (
	"fmt"
	"time"

	"ContestSync/internal/model"
)

// seed 所有策略落空时的静态数据，时间相对 now（按平台时区取整点）
func (s *Source) seed(now time.Time) []*model.RawContest {
	now = now.In(s.Loc)
	at := func(daysFromNow, hour int) time.Time {
		d := now.AddDate(0, 0, daysFromNow)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, s.Loc)
	}

	upcoming := at(3, 12)
	ongoing := at(-1, 9)
	out := []*model.RawContest{
		{
			Name:      "March Long Challenge 2025",
			Platform:  model.PlatformCodeChef,
			URL:       siteURL + "/MARCH25",
			StartTime: upcoming,
			EndTime:   upcoming.AddDate(0, 0, 3),
			Duration:  3 * 24 * 60,
		},
		{
			Name:      "Starters 125",
			Platform:  model.PlatformCodeChef,
			URL:       siteURL + "/START125",
			StartTime: ongoing,
			EndTime:   ongoing.AddDate(0, 0, 3),
			Duration:  3 * 24 * 60,
		},
	}
	for i := 1; i <= 5; i++ {
		start := at(-7*i, 15)
		out = append(out, &model.RawContest{
			Name:      fmt.Sprintf("Starters %d", 125-i),
			Platform:  model.PlatformCodeChef,
			URL:       fmt.Sprintf("%s/START%d", siteURL, 125-i),
			StartTime: start,
			EndTime:   start.Add(3 * time.Hour),
			Duration:  3 * 60,
		})
	}
	return out
}

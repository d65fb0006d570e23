package leetcode

import (
	"context"
	"fmt"
	"time"

	"ContestSync/internal/adapter"
	"ContestSync/internal/config"
	"ContestSync/internal/fallback"
	"ContestSync/internal/interfaces"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"
	"ContestSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL      = "https://leetcode.com"
	defaultPagePath     = "/contest/"
	defaultCalendarPath = "/contest/calendar/"
	defaultGraphQLPath  = "/graphql"
	siteURL             = "https://leetcode.com"

	// 页面数据未给出时长时的默认值（分钟）
	defaultDurationMinutes = 90

	strategyHelper     = "helper"
	strategyGraphQL    = "graphql"
	strategyScriptJSON = "script_json"
	strategyDOMCards   = "dom_cards"
	strategyCalendar   = "calendar"
)

const allContestsQuery = `query getContestList {
	allContests {
		title
		titleSlug
		startTime
		duration
	}
}`

func init() {
	adapter.Register(model.PlatformLeetCode, NewLeetCodeSource)
}

// Source LeetCode 来源：页面数据主要以脚本内嵌JSON形式给出
type Source struct {
	adapter.Base
}

func NewLeetCodeSource(cfg *config.PlatformConfig, logger *logrus.Logger, reporter *metrics.Reporter) interfaces.ContestSource {
	return &Source{Base: adapter.NewBase(model.PlatformLeetCode, cfg, logger, reporter, defaultBaseURL)}
}

func (s *Source) GetName() string {
	return "LeetCode"
}

func (s *Source) GetType() model.PlatformType {
	return model.PlatformLeetCode
}

// FetchContests 依次尝试：外部助手（已配置时）→ GraphQL → 页面脚本JSON → 页面卡片 → 日历页 → 种子数据
func (s *Source) FetchContests(ctx context.Context) []*model.RawContest {
	page := s.LazyPage(ctx, s.URL(s.Cfg.PagePath, defaultPagePath))
	calendar := s.LazyPage(ctx, s.URL(s.Cfg.CalendarPath, defaultCalendarPath))

	var strategies []fallback.Strategy
	if len(s.Cfg.HelperCommand) > 0 {
		strategies = append(strategies, fallback.Strategy{Name: strategyHelper, Extract: s.runHelper})
	}
	strategies = append(strategies,
		fallback.Strategy{Name: strategyGraphQL, Extract: s.fetchGraphQL},
		fallback.Strategy{Name: strategyScriptJSON, Extract: func(context.Context) ([]*model.RawContest, error) {
			p, err := page.Load()
			if err != nil {
				return nil, err
			}
			return s.extractScripts(p.Doc, strategyScriptJSON), nil
		}},
		fallback.Strategy{Name: strategyDOMCards, Extract: func(context.Context) ([]*model.RawContest, error) {
			p, err := page.Load()
			if err != nil {
				return nil, err
			}
			return s.extractCards(p.Doc, strategyDOMCards), nil
		}},
		fallback.Strategy{Name: strategyCalendar, Extract: func(context.Context) ([]*model.RawContest, error) {
			p, err := calendar.Load()
			if err != nil {
				return nil, err
			}
			if out := s.extractScripts(p.Doc, strategyCalendar); len(out) > 0 {
				return out, nil
			}
			return s.extractCards(p.Doc, strategyCalendar), nil
		}},
	)
	return s.RunChain(ctx, strategies, seed)
}

// fetchGraphQL GraphQL 接口策略（startTime 为秒级时间戳，duration 单位为秒）
func (s *Source) fetchGraphQL(ctx context.Context) ([]*model.RawContest, error) {
	var resp model.LeetCodeGraphQLResponse
	body := map[string]any{"query": allContestsQuery}
	if err := httpclient.PostJSON(ctx, s.Client, s.URL(s.Cfg.APIPath, defaultGraphQLPath), body, &resp); err != nil {
		return nil, fmt.Errorf("调用LeetCode GraphQL失败: %w", err)
	}

	contests := make([]*model.RawContest, 0, len(resp.Data.AllContests))
	for _, c := range resp.Data.AllContests {
		if c.StartTime <= 0 {
			s.Drop(adapter.DropMissingField, logrus.Fields{"name": c.Title, "field": "startTime", "strategy": strategyGraphQL})
			continue
		}
		start := time.Unix(c.StartTime, 0).UTC()
		end := start.Add(time.Duration(c.Duration) * time.Second)
		rc, ok := s.Record(c.Title, contestURL(c.TitleSlug, c.Title), start, end, int(c.Duration/60), strategyGraphQL)
		if !ok {
			continue
		}
		contests = append(contests, rc)
	}
	return contests, nil
}

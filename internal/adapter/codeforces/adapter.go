package codeforces

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
	defaultBaseURL = "https://codeforces.com"
	defaultAPIPath = "/api/contest.list"
	contestURLFmt  = "https://codeforces.com/contest/%d"
	strategyAPI    = "api"
)

func init() {
	adapter.Register(model.PlatformCodeforces, NewCodeforcesSource)
}

// Source Codeforces 官方结构化接口来源（无种子数据，接口不可用时返回空）
type Source struct {
	adapter.Base
}

func NewCodeforcesSource(cfg *config.PlatformConfig, logger *logrus.Logger, reporter *metrics.Reporter) interfaces.ContestSource {
	return &Source{Base: adapter.NewBase(model.PlatformCodeforces, cfg, logger, reporter, defaultBaseURL)}
}

func (s *Source) GetName() string {
	return "Codeforces"
}

func (s *Source) GetType() model.PlatformType {
	return model.PlatformCodeforces
}

func (s *Source) FetchContests(ctx context.Context) []*model.RawContest {
	return s.RunChain(ctx, []fallback.Strategy{
		{Name: strategyAPI, Extract: s.fetchAPI},
	}, nil)
}

func (s *Source) fetchAPI(ctx context.Context) ([]*model.RawContest, error) {
	var env model.CodeforcesEnvelope
	if err := httpclient.GetJSON(ctx, s.Client, s.URL(s.Cfg.APIPath, defaultAPIPath), &env); err != nil {
		return nil, fmt.Errorf("获取Codeforces比赛列表失败: %w", err)
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("%w: Codeforces返回状态 %q: %s", model.ErrMalformedSourcePayload, env.Status, env.Comment)
	}

	contests := make([]*model.RawContest, 0, len(env.Result))
	for _, c := range env.Result {
		if c.StartTimeSeconds == nil || *c.StartTimeSeconds <= 0 {
			s.Drop(adapter.DropMissingField, logrus.Fields{"name": c.Name, "contest_id": c.ID, "field": "startTimeSeconds"})
			continue
		}
		start := time.Unix(*c.StartTimeSeconds, 0).UTC()
		end := start.Add(time.Duration(c.DurationSeconds) * time.Second)
		rc, ok := s.Record(c.Name, fmt.Sprintf(contestURLFmt, c.ID), start, end, int(c.DurationSeconds/60), strategyAPI)
		if !ok {
			continue
		}
		rc.SourceStatus = adapter.StatusHint(c.Phase)
		contests = append(contests, rc)
	}
	return contests, nil
}

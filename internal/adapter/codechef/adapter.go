package codechef

import (
	"context"

	"ContestSync/internal/adapter"
	"ContestSync/internal/config"
	"ContestSync/internal/fallback"
	"ContestSync/internal/interfaces"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL  = "https://www.codechef.com"
	defaultPagePath = "/contests"
	defaultAPIPath  = "/api/list/contests/all"
	siteURL         = "https://www.codechef.com"

	strategyDOMTable   = "dom_table"
	strategyScriptJSON = "script_json"
	strategyAPI        = "api"
)

func init() {
	adapter.Register(model.PlatformCodeChef, NewCodeChefSource)
}

// Source CodeChef 比赛页（表格）来源
type Source struct {
	adapter.Base
}

func NewCodeChefSource(cfg *config.PlatformConfig, logger *logrus.Logger, reporter *metrics.Reporter) interfaces.ContestSource {
	if cfg != nil && cfg.Timezone == "" {
		c := *cfg
		c.Timezone = "Asia/Kolkata"
		cfg = &c
	}
	return &Source{Base: adapter.NewBase(model.PlatformCodeChef, cfg, logger, reporter, defaultBaseURL)}
}

func (s *Source) GetName() string {
	return "CodeChef"
}

func (s *Source) GetType() model.PlatformType {
	return model.PlatformCodeChef
}

// FetchContests 依次尝试：页面表格 → 页面脚本内嵌JSON → 非官方JSON接口 → 种子数据
func (s *Source) FetchContests(ctx context.Context) []*model.RawContest {
	page := s.LazyPage(ctx, s.URL(s.Cfg.PagePath, defaultPagePath))
	return s.RunChain(ctx, []fallback.Strategy{
		{Name: strategyDOMTable, Extract: func(context.Context) ([]*model.RawContest, error) {
			p, err := page.Load()
			if err != nil {
				return nil, err
			}
			return s.extractTables(p.Doc), nil
		}},
		{Name: strategyScriptJSON, Extract: func(context.Context) ([]*model.RawContest, error) {
			p, err := page.Load()
			if err != nil {
				return nil, err
			}
			return s.extractScripts(p.Doc), nil
		}},
		{Name: strategyAPI, Extract: s.fetchAPI},
	}, s.seed)
}

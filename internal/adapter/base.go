package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"ContestSync/internal/config"
	"ContestSync/internal/fallback"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"
	"ContestSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// 记录丢弃原因（metrics标签）
const (
	DropMissingField   = "missing_field"
	DropUnparsableTime = "unparsable_time"
	DropInvalidRange   = "invalid_range"
)

// Base 各来源共用的依赖与工具方法
type Base struct {
	Platform  model.PlatformType
	Cfg       *config.PlatformConfig
	Logger    *logrus.Logger
	Reporter  *metrics.Reporter
	Client    *http.Client
	Transport http.RoundTripper
	Loc       *time.Location
	Now       func() time.Time

	baseURL string
}

// NewBase 按平台配置构建公共依赖；defaultBaseURL 在配置未给出 base_url 时使用
func NewBase(platform model.PlatformType, cfg *config.PlatformConfig, logger *logrus.Logger, reporter *metrics.Reporter, defaultBaseURL string) Base {
	if cfg == nil {
		cfg = &config.PlatformConfig{}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return Base{
		Platform:  platform,
		Cfg:       cfg,
		Logger:    logger,
		Reporter:  reporter,
		Client:    httpclient.NewHTTPClient(cfg, logger),
		Transport: httpclient.NewTransport(cfg, logger),
		Loc:       cfg.Location(),
		Now:       time.Now,
		baseURL:   base,
	}
}

// URL 拼接来源地址；path 为空时使用 fallbackPath
func (b *Base) URL(path, fallbackPath string) string {
	if path == "" {
		path = fallbackPath
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.baseURL + path
}

// RunChain 执行回退链并返回记录；上报器为空时只执行不上报
func (b *Base) RunChain(ctx context.Context, strategies []fallback.Strategy, seed fallback.SeedFunc) []*model.RawContest {
	chain := &fallback.Chain{
		Platform:   b.Platform,
		Strategies: strategies,
		Seed:       seed,
	}
	if b.Reporter != nil {
		chain.Reporter = b.Reporter
	}
	res := chain.Run(ctx, b.Now())
	b.Logger.WithFields(logrus.Fields{
		"platform": b.Platform,
		"strategy": res.Strategy,
		"seeded":   res.Seeded,
		"records":  len(res.Contests),
		"attempts": len(res.Attempts),
	}).Info("来源抓取完成")
	return res.Contests
}

// Drop 丢弃一条记录：计数并记录原因，不影响同批其他记录
func (b *Base) Drop(reason string, fields logrus.Fields) {
	if b.Reporter != nil {
		b.Reporter.RecordDropped(b.Platform, reason, fields)
		return
	}
	b.Logger.WithFields(fields).WithFields(logrus.Fields{
		"platform": b.Platform,
		"reason":   reason,
	}).Warn("丢弃无效比赛记录")
}

// Record 组装原始记录：缺名称/开始时间，或结束时间与时长都缺失时丢弃。
// 只有开始时间与时长时，结束时间 = 开始 + 时长。
func (b *Base) Record(name, url string, start, end time.Time, durationMinutes int, strategy string) (*model.RawContest, bool) {
	name = strings.TrimSpace(name)
	fields := logrus.Fields{"name": name, "strategy": strategy}
	if name == "" || start.IsZero() {
		b.Drop(DropMissingField, fields)
		return nil, false
	}
	if end.IsZero() {
		if durationMinutes <= 0 {
			b.Drop(DropMissingField, fields)
			return nil, false
		}
		end = start.Add(time.Duration(durationMinutes) * time.Minute)
	}
	if end.Before(start) {
		b.Drop(DropInvalidRange, fields)
		return nil, false
	}
	return &model.RawContest{
		Name:      name,
		Platform:  b.Platform,
		URL:       url,
		StartTime: start,
		EndTime:   end,
		Duration:  durationMinutes,
		Strategy:  strategy,
	}, true
}

// PageLoader 同一次抓取中多个策略共享的页面（只请求一次）
type PageLoader struct {
	once  sync.Once
	fetch func() (*httpclient.Page, error)
	page  *httpclient.Page
	err   error
}

// LazyPage 返回延迟加载的页面；首次调用 Load 时才发起请求
func (b *Base) LazyPage(ctx context.Context, rawURL string) *PageLoader {
	return &PageLoader{fetch: func() (*httpclient.Page, error) {
		return httpclient.FetchPage(ctx, b.Transport, b.Cfg.Agent(), b.Cfg.RequestTimeout(), rawURL)
	}}
}

func (p *PageLoader) Load() (*httpclient.Page, error) {
	p.once.Do(func() {
		p.page, p.err = p.fetch()
	})
	return p.page, p.err
}

// ScriptJSON 在页面原文中查找 prefix（正则，匹配到值开始之前），解码紧随其后的一个JSON值。
// 数字保留为 json.Number。JS 字面量不是合法 JSON 时返回 false。
func ScriptJSON(body []byte, prefix *regexp.Regexp) (any, bool) {
	for _, loc := range prefix.FindAllIndex(body, -1) {
		dec := json.NewDecoder(bytes.NewReader(body[loc[1]:]))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		switch v.(type) {
		case []any, map[string]any:
			return v, true
		}
	}
	return nil, false
}

// StatusHint 来源自带状态的统一写法，仅写入 SourceStatus 供日志参考
func StatusHint(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "ongoing", "coding", "running":
		return string(model.StatusOngoing)
	case "future", "upcoming", "before":
		return string(model.StatusUpcoming)
	case "past", "finished", "ended", "system_test", "pending_system_test":
		return string(model.StatusPast)
	}
	return ""
}

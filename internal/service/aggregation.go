package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ContestSync/internal/interfaces"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// 校验失败的丢弃原因（metrics标签）
const dropValidation = "validation"

// SourceLister 提供参与聚合的来源（按固定平台顺序）
type SourceLister interface {
	Sources() []interfaces.ContestSource
}

// AggregateResult 一次抓取汇总的结果
type AggregateResult struct {
	Contests  []*model.Contest
	Platforms map[string]int // 各平台产出的原始记录数（含后续被丢弃的）
	Dropped   int
}

// Aggregator 并发抓取所有来源，规范化并校验为可入库的比赛记录
type Aggregator struct {
	sources  SourceLister
	validate *validator.Validate
	reporter *metrics.Reporter
	logger   *logrus.Logger
	now      func() time.Time
}

func NewAggregator(sources SourceLister, reporter *metrics.Reporter, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		validate: validator.New(),
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Collect 所有来源并发执行并全部等待（单个来源的失败或 panic 只影响自身）；
// 结果按固定平台顺序拼接。全部来源都没有数据时返回 ErrNoDataFromAnySource。
func (a *Aggregator) Collect(ctx context.Context) (*AggregateResult, error) {
	sources := a.sources.Sources()
	batches := make([][]*model.RawContest, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			batches[i] = a.fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	res := &AggregateResult{Platforms: make(map[string]int, len(model.AllPlatforms))}
	for _, p := range model.AllPlatforms {
		res.Platforms[p.Key()] = 0
	}

	now := a.now()
	for i, batch := range batches {
		res.Platforms[sources[i].GetType().Key()] = len(batch)
		for _, rc := range batch {
			c, err := a.normalize(rc, now)
			if err != nil {
				res.Dropped++
				a.drop(rc, err)
				continue
			}
			res.Contests = append(res.Contests, c)
		}
	}

	if len(res.Contests) == 0 {
		return res, fmt.Errorf("聚合失败: %w", model.ErrNoDataFromAnySource)
	}
	return res, nil
}

// fetch 调用单个来源；来源内部 panic 视为无数据
func (a *Aggregator) fetch(ctx context.Context, src interfaces.ContestSource) (out []*model.RawContest) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.WithFields(logrus.Fields{
				"platform": src.GetType(),
				"panic":    p,
			}).Error("来源抓取发生panic，按无数据处理")
			out = nil
		}
	}()
	out = src.FetchContests(ctx)
	a.logger.WithFields(logrus.Fields{
		"platform": src.GetType(),
		"records":  len(out),
	}).Info("来源抓取结束")
	return out
}

// normalize 规范化名称并校验，生成带状态的比赛记录
func (a *Aggregator) normalize(rc *model.RawContest, now time.Time) (*model.Contest, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: 空记录", model.ErrValidationFailure)
	}
	rc.Name = NormalizeName(rc.Name)
	rc.URL = strings.TrimSpace(rc.URL)
	if err := a.validate.Struct(rc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidationFailure, err)
	}

	start, end := rc.StartTime.UTC(), rc.EndTime.UTC()
	return &model.Contest{
		Name:      rc.Name,
		Platform:  rc.Platform,
		URL:       rc.URL,
		StartTime: start,
		EndTime:   end,
		Duration:  rc.DurationMinutes(),
		Status:    model.ClassifyStatus(start, end, now),
	}, nil
}

func (a *Aggregator) drop(rc *model.RawContest, err error) {
	fields := logrus.Fields{"error": err.Error()}
	platform := model.PlatformType("unknown")
	if rc != nil {
		platform = rc.Platform
		fields["name"] = rc.Name
		fields["strategy"] = rc.Strategy
	}
	if a.reporter != nil {
		a.reporter.RecordDropped(platform, dropValidation, fields)
		return
	}
	a.logger.WithFields(fields).WithField("platform", platform).Warn("丢弃未通过校验的比赛记录")
}

// NormalizeName 名称规范化：去首尾空白、合并连续空白、Unicode NFC，保证自然键稳定
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// IsNoData 判断是否为无数据错误
func IsNoData(err error) bool {
	return errors.Is(err, model.ErrNoDataFromAnySource)
}

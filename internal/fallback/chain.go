// Package fallback 按优先级依次尝试抽取策略，全部落空时返回平台的静态种子数据
package fallback

import (
	"context"
	"fmt"
	"time"

	"ContestSync/internal/model"
)

// StrategySeed 种子数据在结果中的策略名
const StrategySeed = "seed"

// Strategy 单个抽取策略：返回空列表或错误都视为"未命中"
type Strategy struct {
	Name    string
	Extract func(ctx context.Context) ([]*model.RawContest, error)
}

// SeedFunc 生成平台静态种子数据，时间相对 now 计算
type SeedFunc func(now time.Time) []*model.RawContest

// Reporter 策略尝试与种子回退的事件上报（由调用方提供，只做记录不参与控制流）
type Reporter interface {
	StrategyAttempt(platform model.PlatformType, strategy string, records int, err error)
	SeedFallback(platform model.PlatformType, records int)
}

// Attempt 一次策略尝试的结果
type Attempt struct {
	Strategy string
	Records  int
	Err      error
}

// Result 整条回退链的结果
type Result struct {
	Contests []*model.RawContest
	Strategy string // 命中的策略名；全部落空且无种子时为空
	Seeded   bool
	Attempts []Attempt
}

// Chain 单个平台的回退链
type Chain struct {
	Platform   model.PlatformType
	Strategies []Strategy
	Seed       SeedFunc // 为 nil 表示该平台没有种子数据
	Reporter   Reporter
}

// Run 严格顺序执行策略，第一个返回 ≥1 条记录的策略胜出并短路其余策略
func (c *Chain) Run(ctx context.Context, now time.Time) Result {
	var res Result
	for _, s := range c.Strategies {
		if err := ctx.Err(); err != nil {
			res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name, Err: err})
			c.report(s.Name, 0, err)
			break
		}
		contests, err := safeExtract(ctx, s)
		contests = compact(contests)
		for _, rc := range contests {
			if rc.Strategy == "" {
				rc.Strategy = s.Name
			}
		}
		res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name, Records: len(contests), Err: err})
		c.report(s.Name, len(contests), err)
		if len(contests) > 0 {
			res.Contests = contests
			res.Strategy = s.Name
			return res
		}
	}

	if c.Seed == nil {
		return res
	}
	seeded := compact(c.Seed(now))
	for _, rc := range seeded {
		rc.Strategy = StrategySeed
	}
	if c.Reporter != nil {
		c.Reporter.SeedFallback(c.Platform, len(seeded))
	}
	res.Contests = seeded
	res.Strategy = StrategySeed
	res.Seeded = true
	return res
}

func (c *Chain) report(strategy string, n int, err error) {
	if c.Reporter != nil {
		c.Reporter.StrategyAttempt(c.Platform, strategy, n, err)
	}
}

// safeExtract 策略内部 panic 也只算作该策略失败
func safeExtract(ctx context.Context, s Strategy) (out []*model.RawContest, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name, p)
		}
	}()
	if s.Extract == nil {
		return nil, fmt.Errorf("strategy %s has no extractor", s.Name)
	}
	return s.Extract(ctx)
}

func compact(in []*model.RawContest) []*model.RawContest {
	out := in[:0:0]
	for _, rc := range in {
		if rc != nil {
			out = append(out, rc)
		}
	}
	return out
}

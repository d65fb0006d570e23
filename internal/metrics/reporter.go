package metrics

import (
	"ContestSync/internal/model"

	"github.com/sirupsen/logrus"
)

// 策略尝试结果
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Reporter 回退链事件上报：计数 + 结构化日志
type Reporter struct {
	logger *logrus.Logger
}

func NewReporter(logger *logrus.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// StrategyAttempt 记录一次策略尝试
func (r *Reporter) StrategyAttempt(platform model.PlatformType, strategy string, records int, err error) {
	outcome := Outcome(records, err)
	StrategyAttempts.WithLabelValues(platform.Key(), strategy, outcome).Inc()

	entry := r.logger.WithFields(logrus.Fields{
		"platform": platform,
		"strategy": strategy,
		"records":  records,
	})
	switch outcome {
	case OutcomeError:
		entry.WithError(err).Warn("抽取策略失败，尝试下一策略")
	case OutcomeEmpty:
		entry.Warn("抽取策略未产出记录，尝试下一策略")
	default:
		entry.Info("抽取策略命中")
	}
}

// SeedFallback 记录一次种子数据回退
func (r *Reporter) SeedFallback(platform model.PlatformType, records int) {
	SeedFallbacks.WithLabelValues(platform.Key()).Inc()
	r.logger.WithFields(logrus.Fields{
		"platform": platform,
		"records":  records,
	}).Warn("所有抽取策略均落空，使用种子数据")
}

// RecordDropped 记录一条被丢弃的记录（缺字段、时间无法解析、校验失败）
func (r *Reporter) RecordDropped(platform model.PlatformType, reason string, fields logrus.Fields) {
	RecordsDropped.WithLabelValues(platform.Key(), reason).Inc()
	r.logger.WithFields(fields).WithFields(logrus.Fields{
		"platform": platform,
		"reason":   reason,
	}).Warn("丢弃无效比赛记录")
}

// Outcome 由记录数与错误推导尝试结果（产出记录即算命中）
func Outcome(records int, err error) string {
	switch {
	case records > 0:
		return OutcomeHit
	case err != nil:
		return OutcomeError
	default:
		return OutcomeEmpty
	}
}

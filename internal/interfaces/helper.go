package interfaces

import (
	"ContestSync/internal/config"
	"ContestSync/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Factory 比赛来源工厂函数签名
// 入参：平台配置、日志实例、回退链/丢弃记录上报器
// 出参：实现ContestSource接口的来源实例
type Factory func(cfg *config.PlatformConfig, logger *logrus.Logger, reporter *metrics.Reporter) ContestSource

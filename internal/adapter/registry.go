package adapter

import (
	"ContestSync/internal/config"
	"ContestSync/internal/interfaces"
	"ContestSync/internal/metrics"
	"ContestSync/internal/model"
	"fmt"

	"github.com/sirupsen/logrus"
)

// PlatformRegistry 按配置实例化的比赛来源集合
type PlatformRegistry struct {
	cfg      *config.Config
	logger   *logrus.Logger
	reporter *metrics.Reporter
	// 平台类型→来源实例
	sources map[model.PlatformType]interfaces.ContestSource
}

func NewPlatformRegistry(cfg *config.Config, logger *logrus.Logger, reporter *metrics.Reporter) *PlatformRegistry {
	r := &PlatformRegistry{
		cfg:      cfg,
		logger:   logger,
		reporter: reporter,
		sources:  make(map[model.PlatformType]interfaces.ContestSource),
	}
	r.initSourcesFromFactories()
	return r
}

// NewStaticRegistry 直接由来源实例构建注册表（测试与手工装配使用）
func NewStaticRegistry(logger *logrus.Logger, sources ...interfaces.ContestSource) *PlatformRegistry {
	r := &PlatformRegistry{
		logger:  logger,
		sources: make(map[model.PlatformType]interfaces.ContestSource),
	}
	for _, s := range sources {
		r.sources[s.GetType()] = s
	}
	return r
}

// initSourcesFromFactories 遍历配置中的平台，匹配工厂函数创建实例
func (r *PlatformRegistry) initSourcesFromFactories() {
	r.logger.WithField("factory_platforms", ListFactories()).Info("已注册的来源工厂函数")

	for key, platformCfg := range r.cfg.Platforms {
		platformType, ok := model.ParsePlatform(key)
		if !ok {
			r.logger.WithField("platform", key).Warn("未知平台配置，已忽略")
			continue
		}
		if !r.cfg.IsPlatformEnabled(platformType.Key()) {
			r.logger.WithField("platform", platformType).Info("平台未启用，跳过")
			continue
		}

		factory, ok := GetFactory(platformType)
		if !ok {
			r.logger.WithField("platform", platformType).Error("未找到对应的工厂函数（init未注册？）")
			continue
		}

		pc := platformCfg
		source := factory(&pc, r.logger, r.reporter)
		if source == nil {
			r.logger.WithField("platform", platformType).Error("工厂函数返回nil来源实例")
			continue
		}
		if source.GetType() != platformType {
			r.logger.WithFields(logrus.Fields{
				"config_platform": platformType,
				"source_platform": source.GetType(),
			}).Error("来源平台类型与配置不匹配")
			continue
		}

		r.sources[platformType] = source
		r.logger.WithField("platform", platformType).Info("来源实例初始化成功并加入注册表")
	}

	r.logger.WithField("instance_platforms", len(r.sources)).Info("最终初始化的来源实例数量")
}

// Sources 按固定平台顺序返回已初始化的来源（聚合结果按此顺序拼接）
func (r *PlatformRegistry) Sources() []interfaces.ContestSource {
	out := make([]interfaces.ContestSource, 0, len(r.sources))
	for _, p := range model.AllPlatforms {
		if s, ok := r.sources[p]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ListRegisteredPlatforms 获取所有已初始化的平台类型列表
func (r *PlatformRegistry) ListRegisteredPlatforms() []model.PlatformType {
	var platforms []model.PlatformType
	for _, s := range r.Sources() {
		platforms = append(platforms, s.GetType())
	}
	return platforms
}

// GetSource 获取来源实例
func (r *PlatformRegistry) GetSource(platform model.PlatformType) (interfaces.ContestSource, error) {
	source, ok := r.sources[platform]
	if !ok {
		return nil, fmt.Errorf("平台%s未初始化来源实例（已初始化：%v）", platform, r.ListRegisteredPlatforms())
	}
	return source, nil
}

// GetPlatformCount 获取已初始化实例的平台数量
func (r *PlatformRegistry) GetPlatformCount() int {
	return len(r.sources)
}

package adapter

import (
	"fmt"
	"sync"

	"ContestSync/internal/interfaces"
	"ContestSync/internal/model"
)

// 来源工厂表：各来源包在 init 中登记，PlatformRegistry 按配置实例化
var (
	factoriesMu sync.RWMutex
	factories   = map[model.PlatformType]interfaces.Factory{}
)

// Register 登记平台的来源工厂；重复登记或传入 nil 直接 panic（属于程序装配错误）
func Register(platform model.PlatformType, factory interfaces.Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic(fmt.Sprintf("adapter: 平台 %s 的工厂为 nil", platform))
	}
	if _, dup := factories[platform]; dup {
		panic(fmt.Sprintf("adapter: 平台 %s 重复登记", platform))
	}
	factories[platform] = factory
}

// GetFactory 查找平台的来源工厂
func GetFactory(platform model.PlatformType) (interfaces.Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[platform]
	return f, ok
}

// ListFactories 已登记工厂的平台，按固定平台顺序
func ListFactories() []model.PlatformType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]model.PlatformType, 0, len(factories))
	for _, p := range model.AllPlatforms {
		if _, ok := factories[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

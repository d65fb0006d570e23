package interfaces

import (
	"context"

	"ContestSync/internal/model"
)

// ContestSource 所有比赛来源平台必须实现的核心接口
// FetchContests 内部吸收一切来源故障（最坏返回种子数据或空列表），不向外返回错误
type ContestSource interface {
	GetName() string                                       // 平台名称
	GetType() model.PlatformType                           // 平台枚举
	FetchContests(ctx context.Context) []*model.RawContest // 按回退链抓取比赛
}

// ContestRepository 比赛表的存储接口（对账器依赖它，测试中可替换为内存实现）
type ContestRepository interface {
	UpsertContest(ctx context.Context, contest *model.Contest) (created bool, err error)
}

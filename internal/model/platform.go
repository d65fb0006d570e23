package model

import "time"

// RawContest 各平台适配器产出的原始比赛记录（仅在内存中，尚未入库）
type RawContest struct {
	Name         string       `validate:"required"`
	Platform     PlatformType `validate:"required,oneof=Codeforces CodeChef LeetCode"`
	URL          string       `validate:"required,url"`
	StartTime    time.Time    `validate:"required"`
	EndTime      time.Time    `validate:"required,gtefield=StartTime"`
	Duration     int          // 来源直接给出的分钟数，0 表示未给出
	SourceStatus string       // 来源自带状态，仅作日志参考
	Strategy     string       // 产出该记录的抽取策略名
}

// DurationMinutes 来源给出时长则以来源为准（可能与 end-start 不一致，不做校正）
func (r *RawContest) DurationMinutes() int {
	if r.Duration > 0 {
		return r.Duration
	}
	return int(r.EndTime.Sub(r.StartTime) / time.Minute)
}

// CodeforcesEnvelope GET /api/contest.list 的根响应
type CodeforcesEnvelope struct {
	Status  string              `json:"status"`
	Comment string              `json:"comment"`
	Result  []CodeforcesContest `json:"result"`
}

// CodeforcesContest 单条比赛
type CodeforcesContest struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Phase            string `json:"phase"` // BEFORE/CODING/FINISHED...
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds *int64 `json:"startTimeSeconds"` // 部分比赛未定开始时间
}

// LeetCodeGraphQLResponse POST /graphql allContests 查询的响应
type LeetCodeGraphQLResponse struct {
	Data struct {
		AllContests []LeetCodeContest `json:"allContests"`
	} `json:"data"`
}

// LeetCodeContest GraphQL 返回的比赛（duration 单位为秒）
type LeetCodeContest struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}

package codechef

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ContestSync/internal/adapter"
	"ContestSync/internal/fallback"
	"ContestSync/internal/model"
	"ContestSync/internal/timeparse"
	"ContestSync/internal/utils/httpclient"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// 比赛分区：容器选择器 + 分区状态名
var tabs = []struct {
	selector string
	status   string
}{
	{".ongoing-contests", "ongoing"},
	{".future-contests", "upcoming"},
	{".past-contests", "past"},
}

// 同一分区可能的表格行选择器（%s 为分区状态名）
var rowSelectors = []string{
	"#%s-contests-data table tbody tr",
	`[data-tab="%s"] table tbody tr`,
	".%s-contests table tbody tr",
	`div[data-tabid="%s"] table tbody tr`,
}

// 行内列布局；minCells>0 时仅用于单元格数不少于该值的行
type rowLayout struct {
	name     string
	start    string
	end      string
	minCells int
}

var rowLayouts = []rowLayout{
	// 代码 | 名称 | 开始 | 结束
	{name: "td:nth-child(2) a", start: "td:nth-child(3)", end: "td:nth-child(4)", minCells: 4},
	{name: "td:nth-child(1) a, td:nth-child(2) a", start: "td:nth-child(2), td:nth-child(3)", end: "td:nth-child(3), td:nth-child(4)"},
	{name: ".contest-name a", start: ".start-time", end: ".end-time"},
}

var hrefCode = regexp.MustCompile(`/([^/?#]+)/?(?:[?#].*)?$`)

// extractTables 页面表格策略：每个分区取第一个有行的选择器
func (s *Source) extractTables(doc *goquery.Document) []*model.RawContest {
	var out []*model.RawContest
	for _, tab := range tabs {
		rows := doc.Find(tab.selector + " table tbody tr")
		for i := 0; rows.Length() == 0 && i < len(rowSelectors); i++ {
			rows = doc.Find(fmt.Sprintf(rowSelectors[i], tab.status))
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			if rc := s.parseRow(row, tab.status); rc != nil {
				out = append(out, rc)
			}
		})
	}
	return out
}

func (s *Source) parseRow(row *goquery.Selection, status string) *model.RawContest {
	for _, l := range rowLayouts {
		if l.minCells > 0 && row.Children().Filter("td").Length() < l.minCells {
			continue
		}
		nameEl := row.Find(l.name).First()
		startEl := row.Find(l.start).First()
		endEl := row.Find(l.end).First()
		if nameEl.Length() == 0 || startEl.Length() == 0 || endEl.Length() == 0 {
			continue
		}

		name := strings.TrimSpace(nameEl.Text())
		href, _ := nameEl.Attr("href")
		start, errStart := timeparse.ParseString(startEl.Text(), s.Loc)
		end, errEnd := timeparse.ParseString(endEl.Text(), s.Loc)
		if errStart != nil || errEnd != nil {
			s.Drop(adapter.DropUnparsableTime, logrus.Fields{
				"name":  name,
				"start": strings.TrimSpace(startEl.Text()),
				"end":   strings.TrimSpace(endEl.Text()),
			})
			return nil
		}
		rc, ok := s.Record(name, contestURL(codeFromHref(href)), start, end, 0, strategyDOMTable)
		if !ok {
			return nil
		}
		rc.SourceStatus = status
		return rc
	}
	return nil
}

// 页面脚本中的比赛数据
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`var\s+contestsData\s*=\s*`),
	regexp.MustCompile(`contests\s*:\s*`),
	regexp.MustCompile(`var\s+allContests\s*=\s*`),
}

// extractScripts 页面脚本内嵌JSON策略
func (s *Source) extractScripts(doc *goquery.Document) []*model.RawContest {
	var out []*model.RawContest
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		content := []byte(script.Text())
		for _, p := range scriptPatterns {
			data, ok := adapter.ScriptJSON(content, p)
			if !ok {
				continue
			}
			out = s.fromGrouped(data, strategyScriptJSON)
			if len(out) > 0 {
				return false
			}
		}
		return true
	})
	return out
}

// fromGrouped 处理两种结构：比赛数组，或按 present/future/past 分组的对象
func (s *Source) fromGrouped(data any, strategy string) []*model.RawContest {
	if arr, ok := data.([]any); ok {
		return s.fromObjects(fallback.AsObjects(arr), "", strategy)
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	var out []*model.RawContest
	for _, group := range []string{"present", "future", "past"} {
		items := fallback.FirstArray(obj, []fallback.Rule{
			fallback.Key(group),
			fallback.Path("contests", group),
			fallback.Key(group + "_contests"),
		})
		out = append(out, s.fromObjects(items, adapter.StatusHint(group), strategy)...)
	}
	return out
}

var (
	nameRules     = fallback.Keys("name", "contestName", "contest_name", "title")
	codeRules     = fallback.Keys("code", "contest_code", "contestCode")
	startRules    = fallback.Keys("startDate", "start_time", "contest_start_date_iso", "start_date", "contest_start_date")
	endRules      = fallback.Keys("endDate", "end_time", "contest_end_date_iso", "end_date", "contest_end_date")
	durationRules = fallback.Keys("contest_duration", "duration")
)

func (s *Source) fromObjects(items []map[string]any, status, strategy string) []*model.RawContest {
	var out []*model.RawContest
	for _, obj := range items {
		name := fallback.FirstString(obj, nameRules)
		code := fallback.FirstString(obj, codeRules)
		startRaw, _ := fallback.FirstValue(obj, startRules)
		endRaw, _ := fallback.FirstValue(obj, endRules)

		if startRaw == nil {
			s.Drop(adapter.DropMissingField, logrus.Fields{"name": name, "field": "start", "strategy": strategy})
			continue
		}
		start, err := timeparse.Parse(startRaw, s.Loc)
		if err != nil {
			s.Drop(adapter.DropUnparsableTime, logrus.Fields{"name": name, "start": startRaw, "strategy": strategy})
			continue
		}
		var end time.Time
		if endRaw != nil {
			if end, err = timeparse.Parse(endRaw, s.Loc); err != nil {
				s.Drop(adapter.DropUnparsableTime, logrus.Fields{"name": name, "end": endRaw, "strategy": strategy})
				continue
			}
		}
		duration, _ := fallback.FirstInt(obj, durationRules)

		rc, ok := s.Record(name, contestURL(code), start, end, int(duration), strategy)
		if !ok {
			continue
		}
		rc.SourceStatus = status
		out = append(out, rc)
	}
	return out
}

// fetchAPI 非官方JSON接口策略：兼容 {contests:{present,future,past}} 与 {present_contests,...} 两种结构
func (s *Source) fetchAPI(ctx context.Context) ([]*model.RawContest, error) {
	var payload map[string]any
	if err := httpclient.GetJSON(ctx, s.Client, s.URL(s.Cfg.APIPath, defaultAPIPath), &payload); err != nil {
		return nil, fmt.Errorf("获取CodeChef比赛接口失败: %w", err)
	}
	if st, ok := payload["status"].(string); ok && !strings.EqualFold(st, "success") {
		return nil, fmt.Errorf("%w: CodeChef接口返回状态 %q", model.ErrMalformedSourcePayload, st)
	}
	return s.fromGrouped(payload, strategyAPI), nil
}

func codeFromHref(href string) string {
	m := hrefCode.FindStringSubmatch(strings.TrimSpace(href))
	if m == nil {
		return ""
	}
	return m[1]
}

func contestURL(code string) string {
	if code == "" {
		return siteURL + "/contests"
	}
	return siteURL + "/" + code
}

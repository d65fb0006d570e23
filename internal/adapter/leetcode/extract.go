package leetcode

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ContestSync/internal/adapter"
	"ContestSync/internal/fallback"
	"ContestSync/internal/model"
	"ContestSync/internal/timeparse"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// 页面脚本中的比赛数据
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`window\.pageData\s*=\s*`),
	regexp.MustCompile(`window\.CONTEST_DATA\s*=\s*`),
	regexp.MustCompile(`contests\s*:\s*`),
	regexp.MustCompile(`initialState[\s\S]*?contests"?\s*:\s*`),
	regexp.MustCompile(`"contestData"\s*:\s*`),
}

// 解码出的对象中比赛数组可能所在的位置
var arrayRules = []fallback.Rule{
	fallback.Key("contests"),
	fallback.Key("contestData"),
	fallback.Path("data", "contests"),
}

var (
	titleRules    = fallback.Keys("title", "name", "contestTitle")
	slugRules     = fallback.Keys("titleSlug", "slug")
	urlRules      = fallback.Keys("url")
	startRules    = fallback.Keys("startTime", "startDate")
	endRules      = fallback.Keys("endTime", "endDate")
	durationRules = fallback.Keys("duration")
)

// extractScripts 页面脚本内嵌JSON策略
func (s *Source) extractScripts(doc *goquery.Document, strategy string) []*model.RawContest {
	var out []*model.RawContest
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		content := []byte(script.Text())
		for _, p := range scriptPatterns {
			data, ok := adapter.ScriptJSON(content, p)
			if !ok {
				continue
			}
			var items []map[string]any
			switch v := data.(type) {
			case []any:
				items = fallback.AsObjects(v)
			case map[string]any:
				items = fallback.FirstArray(v, arrayRules)
			}
			if len(items) == 0 {
				continue
			}
			out = append(out, s.fromObjects(items, strategy)...)
			break
		}
	})
	return out
}

// fromObjects 形状不固定的比赛对象；时长以分钟计，结束时间与时长都缺失时取 90
func (s *Source) fromObjects(items []map[string]any, strategy string) []*model.RawContest {
	var out []*model.RawContest
	for _, obj := range items {
		title := fallback.FirstString(obj, titleRules)
		startRaw, _ := fallback.FirstValue(obj, startRules)
		if title == "" || startRaw == nil {
			s.Drop(adapter.DropMissingField, logrus.Fields{"name": title, "strategy": strategy})
			continue
		}
		start, err := timeparse.Parse(startRaw, s.Loc)
		if err != nil {
			s.Drop(adapter.DropUnparsableTime, logrus.Fields{"name": title, "start": startRaw, "strategy": strategy})
			continue
		}
		var end time.Time
		if endRaw, _ := fallback.FirstValue(obj, endRules); endRaw != nil {
			if end, err = timeparse.Parse(endRaw, s.Loc); err != nil {
				s.Drop(adapter.DropUnparsableTime, logrus.Fields{"name": title, "end": endRaw, "strategy": strategy})
				continue
			}
		}
		// 有结束时间时以 end-start 为准，两者都缺才用默认时长
		duration, ok := fallback.FirstInt(obj, durationRules)
		if !ok || duration <= 0 {
			duration = 0
			if end.IsZero() {
				duration = defaultDurationMinutes
			}
		}

		url := absoluteURL(fallback.FirstString(obj, urlRules))
		if url == "" {
			url = contestURL(fallback.FirstString(obj, slugRules), title)
		}
		if rc, ok := s.Record(title, url, start, end, int(duration), strategy); ok {
			out = append(out, rc)
		}
	}
	return out
}

// 卡片容器选择器，按顺序取第一个能产出记录的
var cardSelectors = []string{
	".contest-card",
	".contest-container .contest-card",
	".contest-list .contest",
	`[data-cy="contest-card"]`,
	".rounded-lg.shadow-md",
	".contest-info",
	".contest-overview .items-center",
}

const (
	cardTitleSelector    = ".card-title, .contest-title, h4, [data-title], .text-xl, .font-bold"
	cardTimeSelector     = ".contest-start-time, [data-start-time], .start-time, time, [datetime]"
	cardDurationSelector = ".duration, .contest-duration"
)

var (
	titleInText = regexp.MustCompile(`Weekly Contest \d+|Biweekly Contest \d+`)
	dateInText  = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}`)
	clockInText = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)`)
	firstNumber = regexp.MustCompile(`\d+`)
	timeAttrs   = []string{"start-time", "data-start-time", "datetime", "data-value"}
)

// extractCards 页面卡片策略
func (s *Source) extractCards(doc *goquery.Document, strategy string) []*model.RawContest {
	for _, sel := range cardSelectors {
		cards := doc.Find(sel)
		if cards.Length() == 0 {
			continue
		}
		var out []*model.RawContest
		cards.Each(func(_ int, card *goquery.Selection) {
			if rc := s.parseCard(card, strategy); rc != nil {
				out = append(out, rc)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func (s *Source) parseCard(card *goquery.Selection, strategy string) *model.RawContest {
	title := strings.TrimSpace(card.Find(cardTitleSelector).First().Text())
	if title == "" {
		title = titleInText.FindString(card.Text())
	}
	if title == "" {
		return nil // 不是比赛卡片
	}

	url := ""
	if href, ok := card.Find("a").First().Attr("href"); ok {
		url = absoluteURL(href)
	}
	if url == "" {
		url = contestURL("", title)
	}

	start, ok := s.cardStart(card)
	if !ok {
		s.Drop(adapter.DropUnparsableTime, logrus.Fields{"name": title, "strategy": strategy})
		return nil
	}

	duration := defaultDurationMinutes
	if m := firstNumber.FindString(card.Find(cardDurationSelector).First().Text()); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			duration = n
		}
	}

	rc, ok := s.Record(title, url, start, time.Time{}, duration, strategy)
	if !ok {
		return nil
	}
	return rc
}

// cardStart 时间元素属性 → 时间元素文本 → 卡片全文中的日期/时间片段
func (s *Source) cardStart(card *goquery.Selection) (time.Time, bool) {
	if el := card.Find(cardTimeSelector).First(); el.Length() > 0 {
		for _, attr := range timeAttrs {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				if t, err := timeparse.ParseString(v, s.Loc); err == nil {
					return t, true
				}
			}
		}
		if t, err := timeparse.ParseString(el.Text(), s.Loc); err == nil {
			return t, true
		}
	}

	text := card.Text()
	date := dateInText.FindString(text)
	if date == "" {
		return time.Time{}, false
	}
	t, err := timeparse.ParseDateAndClock(date, clockInText.FindString(text), s.Loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// contestURL 比赛链接：有 slug 用 slug，否则由标题生成
func contestURL(slug, title string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	}
	return siteURL + "/contest/" + slug
}

func absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return siteURL + href
	default:
		return siteURL + "/" + href
	}
}

// Package timeparse 把各平台的时间表示统一解析为绝对时间
package timeparse

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ContestSync/internal/model"

	"github.com/araddon/dateparse"
)

// 大于该值的数字按毫秒时间戳处理（1e11 秒已是公元 5138 年）
const millisThreshold = 1e11

// 毫秒时间戳上限（约公元 5138 年），超出即视为无法解析
const maxMillis = 1e14

var digitsOnly = regexp.MustCompile(`^\d+$`)

// dayMonYear 匹配 "31 Dec 2023 12:30:00"
var dayMonYear = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})[A-Za-z]*\s+(\d{4})\s+(\d{1,2}):(\d{2}):(\d{2})$`)

// 带时区/偏移的 ISO-8601 格式
var isoZoned = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

// 无偏移的 ISO-8601 格式，按来源时区解释
var isoLocal = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// 日期 + 单独时间片段（页面文本里常见的本地化写法）
var dateClock = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1/2/2006 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04",
	"2 Jan 2006 15:04",
	"1/2/2006",
}

// Parse 按固定优先级解析时间：数字时间戳 → "D Mon YYYY HH:MM:SS" → ISO-8601 → 日期+时间片段 → 通用解析。
// 失败时返回包装了 model.ErrUnparsableTimestamp 的错误，从不 panic。
func Parse(value any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch v := value.(type) {
	case nil:
		return time.Time{}, unparsable(value)
	case time.Time:
		if v.IsZero() {
			return time.Time{}, unparsable(value)
		}
		return v, nil
	case int:
		return fromUnix(float64(v))
	case int64:
		return fromUnix(float64(v))
	case float64:
		return fromUnix(v)
	case json.Number:
		return ParseString(v.String(), loc)
	case string:
		return ParseString(v, loc)
	default:
		return time.Time{}, unparsable(value)
	}
}

// ParseString 解析文本形式的时间
func ParseString(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, unparsable(s)
	}

	// 1. 纯数字：Unix 时间戳
	if digitsOnly.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, unparsable(s)
		}
		return fromUnix(n)
	}

	// 2. "D Mon YYYY HH:MM:SS"
	if t, ok := parseDayMonYear(s, loc); ok {
		return t, nil
	}

	// 3. ISO-8601
	for _, layout := range isoZoned {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range isoLocal {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	// 4. 日期 + 时间片段
	// AM/PM 解析区分大小写，统一转大写（月份名匹配不区分大小写）
	upper := strings.ToUpper(s)
	for _, layout := range dateClock {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, nil
		}
	}

	// 5. 通用兜底解析
	t, err := dateparse.ParseIn(s, loc)
	if err != nil || t.IsZero() || t.Before(time.Unix(0, 0)) {
		return time.Time{}, unparsable(s)
	}
	return t, nil
}

// ParseDateAndClock 拼接单独的日期与时间片段后解析；clock 为空时只解析日期
func ParseDateAndClock(date, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, unparsable(clock)
	}
	if clock == "" {
		return ParseString(date, loc)
	}
	return ParseString(date+" "+clock, loc)
}

func parseDayMonYear(s string, loc *time.Location) (time.Time, bool) {
	m := dayMonYear.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	mon, err := time.Parse("Jan", m[2])
	if err != nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])
	if day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, mon.Month(), day, hour, minute, sec, 0, loc)
	// time.Date 会把 31 Feb 规范化到 3 月，这类输入视为无法匹配
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func fromUnix(n float64) (time.Time, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 || n > maxMillis {
		return time.Time{}, unparsable(n)
	}
	if n > millisThreshold {
		return time.UnixMilli(int64(n)).UTC(), nil
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func unparsable(v any) error {
	return fmt.Errorf("%w: %v", model.ErrUnparsableTimestamp, v)
}

package leetcode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ContestSync/internal/config"
	"ContestSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes map[string]string

func newTestSource(t *testing.T, r routes, helper ...string) *Source {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, ok := r[req.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.PlatformConfig{BaseURL: srv.URL, Timeout: 2, HelperCommand: helper}
	return NewLeetCodeSource(cfg, logger, nil).(*Source)
}

func TestFetchContests_GraphQL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "allContests")
		_, _ = w.Write([]byte(`{"data":{"allContests":[
			{"title":"Weekly Contest 440","titleSlug":"weekly-contest-440","startTime":1741444200,"duration":5400},
			{"title":"Unscheduled","titleSlug":"unscheduled","startTime":0,"duration":5400}
		]}}`))
	}))
	defer srv.Close()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	src := NewLeetCodeSource(&config.PlatformConfig{BaseURL: srv.URL, Timeout: 2}, logger, nil).(*Source)

	got := src.FetchContests(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Weekly Contest 440", got[0].Name)
	assert.Equal(t, "https://leetcode.com/contest/weekly-contest-440", got[0].URL)
	assert.Equal(t, 90, got[0].Duration)
	assert.True(t, got[0].EndTime.Equal(time.Unix(1741444200+5400, 0)))
	assert.Equal(t, strategyGraphQL, got[0].Strategy)
}

func TestFetchContests_ScriptJSON(t *testing.T) {
	page := `<html><head><script>
window.pageData = {"contests":[
	{"title":"Weekly Contest 441","titleSlug":"weekly-contest-441","startTime":1742049000},
	{"name":"Biweekly Contest 127","startDate":"2025-03-15T14:30:00Z","duration":120},
	{"title":"No Start"}
]};
</script></head><body></body></html>`
	src := newTestSource(t, routes{defaultPagePath: page})

	got := src.FetchContests(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, strategyScriptJSON, got[0].Strategy)
	assert.True(t, got[0].StartTime.Equal(time.Unix(1742049000, 0)))
	assert.Equal(t, 90, got[0].Duration)
	assert.True(t, got[0].EndTime.Equal(got[0].StartTime.Add(90*time.Minute)))
	assert.Equal(t, "https://leetcode.com/contest/biweekly-contest-127", got[1].URL)
	assert.Equal(t, 120, got[1].Duration)
}

func TestFetchContests_DOMCards(t *testing.T) {
	page := `<html><body>
<div class="contest-card"><a href="/contest/weekly-contest-442"><h4>Weekly Contest 442</h4></a>
	<span class="start-time" data-start-time="1742653800"></span><span class="duration">100 min</span></div>
<div class="contest-card"><div>Biweekly Contest 128 starts 3/22/2025 2:30 PM</div></div>
<div class="contest-card"><h4>Mystery</h4><span>no date here</span></div>
</body></html>`
	src := newTestSource(t, routes{defaultPagePath: page})

	got := src.FetchContests(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, strategyDOMCards, got[0].Strategy)
	assert.Equal(t, "Weekly Contest 442", got[0].Name)
	assert.Equal(t, "https://leetcode.com/contest/weekly-contest-442", got[0].URL)
	assert.True(t, got[0].StartTime.Equal(time.Unix(1742653800, 0)))
	assert.Equal(t, 100, got[0].Duration)

	assert.Equal(t, "Biweekly Contest 128", got[1].Name)
	assert.Equal(t, "https://leetcode.com/contest/biweekly-contest-128", got[1].URL)
	assert.True(t, got[1].StartTime.Equal(time.Date(2025, 3, 22, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, defaultDurationMinutes, got[1].Duration)
}

func TestFetchContests_CalendarPage(t *testing.T) {
	calendar := `<html><script>window.CONTEST_DATA = [{"title":"Weekly Contest 444","titleSlug":"weekly-contest-444","startTime":"2025-04-05T02:30:00Z"}];</script></html>`
	src := newTestSource(t, routes{defaultCalendarPath: calendar})

	got := src.FetchContests(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, strategyCalendar, got[0].Strategy)
	assert.Equal(t, "Weekly Contest 444", got[0].Name)
}

func TestFetchContests_Helper(t *testing.T) {
	line := `{"name":"Weekly Contest 443","url":"https://leetcode.com/contest/weekly-contest-443","startTime":"2025-03-29T14:30:00","endTime":"2025-03-29T16:00:00","duration":90}`
	src := newTestSource(t, routes{}, "sh", "-c", "echo '"+line+"'")

	got := src.FetchContests(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, strategyHelper, got[0].Strategy)
	assert.True(t, got[0].StartTime.Equal(time.Date(2025, 3, 29, 14, 30, 0, 0, time.UTC)))
	assert.True(t, got[0].EndTime.Equal(time.Date(2025, 3, 29, 16, 0, 0, 0, time.UTC)))
}

func TestFetchContests_FailingHelperFallsThrough(t *testing.T) {
	src := newTestSource(t, routes{}, "sh", "-c", "echo boom >&2; exit 3")

	_, err := src.runHelper(context.Background())
	assert.ErrorIs(t, err, model.ErrSourceUnreachable)

	got := src.FetchContests(context.Background())
	require.NotEmpty(t, got)
	assert.Equal(t, "seed", got[0].Strategy)
}

func TestFromObjects_DurationFromEndTime(t *testing.T) {
	src := newTestSource(t, routes{})
	start := time.Date(2025, 3, 29, 14, 30, 0, 0, time.UTC)

	got := src.fromObjects([]map[string]any{
		{"title": "Weekly Contest 443", "startTime": "2025-03-29T14:30:00Z", "endTime": "2025-03-29T16:30:00Z"},
		{"title": "Weekly Contest 444", "startTime": "2025-04-05T14:30:00Z"},
	}, strategyHelper)

	require.Len(t, got, 2)
	assert.True(t, got[0].EndTime.Equal(start.Add(2*time.Hour)))
	assert.Equal(t, 0, got[0].Duration)
	assert.Equal(t, 120, got[0].DurationMinutes())
	assert.Equal(t, defaultDurationMinutes, got[1].DurationMinutes())
	assert.True(t, got[1].EndTime.Equal(got[1].StartTime.Add(90*time.Minute)))
}

func TestDecodeHelperOutput(t *testing.T) {
	items, err := decodeHelperOutput([]byte(`[{"name":"a"},{"name":"b"}]
{"name":"c"}
`))
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = decodeHelperOutput([]byte(`{"name":`))
	assert.ErrorIs(t, err, model.ErrMalformedSourcePayload)
}

func TestSeed_AnchoredOnNextSaturday(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC) // 周三
	got := seed(now)

	require.Len(t, got, 12)
	byName := map[string]*model.RawContest{}
	for _, rc := range got {
		byName[rc.Name] = rc
		assert.Equal(t, model.PlatformLeetCode, rc.Platform)
		assert.Equal(t, 90, rc.DurationMinutes())
		assert.False(t, rc.EndTime.Before(rc.StartTime))
	}
	w440 := byName["Weekly Contest 440"]
	require.NotNil(t, w440)
	assert.True(t, w440.StartTime.Equal(time.Date(2025, 3, 15, 17, 30, 0, 0, time.UTC)))
	assert.Equal(t, "https://leetcode.com/contest/weekly-contest-440", w440.URL)
	assert.Equal(t, model.StatusUpcoming, model.ClassifyStatus(w440.StartTime, w440.EndTime, now))

	for _, name := range []string{"Weekly Contest 442", "Biweekly Contest 127", "Weekly Contest 435", "Biweekly Contest 124"} {
		assert.Contains(t, byName, name)
	}
	assert.Equal(t, model.StatusPast, model.ClassifyStatus(byName["Weekly Contest 439"].StartTime, byName["Weekly Contest 439"].EndTime, now))
}

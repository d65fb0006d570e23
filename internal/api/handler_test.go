package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ContestSync/internal/model"
	"ContestSync/internal/repository"
	"ContestSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubTrigger struct {
	stats  *model.SyncStats
	err    error
	ctxErr error
}

func (s *stubTrigger) Run(ctx context.Context) (*model.SyncStats, error) {
	s.ctxErr = ctx.Err()
	return s.stats, s.err
}

type stubRuns struct {
	run *model.SyncRun
	err error
}

func (s *stubRuns) LatestRun(context.Context) (*model.SyncRun, error) { return s.run, s.err }

type stubFinder struct {
	got      repository.ContestFilter
	contests []*model.Contest
}

func (s *stubFinder) FindContests(_ context.Context, f repository.ContestFilter) ([]*model.Contest, error) {
	s.got = f
	return s.contests, nil
}

func newRouter(sync *SyncHandler, contests *ContestHandler) *gin.Engine {
	r := gin.New()
	if sync != nil {
		r.POST("/sync/run", sync.RunSync)
		r.GET("/sync/last", sync.LastRun)
	}
	if contests != nil {
		r.GET("/api/contests", contests.ListContests)
	}
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRunSync(t *testing.T) {
	ok := &model.SyncStats{RunID: "r1", Total: 3, Updated: 3, Platforms: map[string]int{"codeforces": 1, "codechef": 0, "leetcode": 2}}
	cases := []struct {
		name string
		trig *stubTrigger
		code int
	}{
		{"ok", &stubTrigger{stats: ok}, http.StatusOK},
		{"busy", &stubTrigger{err: service.ErrAlreadyRunning}, http.StatusConflict},
		{"no data", &stubTrigger{stats: &model.SyncStats{}, err: model.ErrNoDataFromAnySource}, http.StatusBadGateway},
		{"other", &stubTrigger{err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(NewSyncHandler(tc.trig, &stubRuns{}, quietLogger()), nil)
			w := do(r, http.MethodPost, "/sync/run")
			assert.Equal(t, tc.code, w.Code)
		})
	}

	r := newRouter(NewSyncHandler(&stubTrigger{stats: ok}, &stubRuns{}, quietLogger()), nil)
	w := do(r, http.MethodPost, "/sync/run")
	assert.JSONEq(t, `{"run_id":"r1","total":3,"updated":3,"created":0,"errors":0,"dropped":0,
		"platforms":{"codeforces":1,"codechef":0,"leetcode":2}}`, w.Body.String())
}

func TestRunSync_SurvivesClientDisconnect(t *testing.T) {
	trig := &stubTrigger{stats: &model.SyncStats{RunID: "r3"}}
	r := newRouter(NewSyncHandler(trig, &stubRuns{}, quietLogger()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/sync/run", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, trig.ctxErr)
}

func TestLastRun(t *testing.T) {
	r := newRouter(NewSyncHandler(&stubTrigger{}, &stubRuns{err: repository.ErrNoSyncRun}, quietLogger()), nil)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/sync/last").Code)

	run := &model.SyncRun{RunUUID: "r2", Outcome: model.RunOutcomeOK, StartedAt: time.Now()}
	r = newRouter(NewSyncHandler(&stubTrigger{}, &stubRuns{run: run}, quietLogger()), nil)
	w := do(r, http.MethodGet, "/sync/last")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"r2"`)
}

func TestListContests_Filters(t *testing.T) {
	finder := &stubFinder{contests: []*model.Contest{{Name: "Weekly Contest 440", Platform: model.PlatformLeetCode}}}
	r := newRouter(nil, NewContestHandler(finder, quietLogger()))

	w := do(r, http.MethodGet, "/api/contests?platform=leetcode,%20CodeChef&status=Upcoming")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"LeetCode", "CodeChef"}, finder.got.Platforms)
	assert.Equal(t, "upcoming", finder.got.Status)
	var body struct {
		Total    int              `json:"total"`
		Contests []map[string]any `json:"contests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "Weekly Contest 440", body.Contests[0]["name"])
	assert.Nil(t, body.Contests[0]["solutionLink"])
}

func TestListContests_BadInput(t *testing.T) {
	r := newRouter(nil, NewContestHandler(&stubFinder{}, quietLogger()))
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/contests?platform=topcoder").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/contests?status=soon").Code)

	w := do(r, http.MethodGet, "/api/contests")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"contests":[]}`, w.Body.String())
}

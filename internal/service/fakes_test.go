package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"ContestSync/internal/adapter"
	"ContestSync/internal/interfaces"
	"ContestSync/internal/model"
	"ContestSync/internal/repository"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeSource struct {
	platform model.PlatformType
	records  func() []*model.RawContest
	panics   bool
	block    <-chan struct{}
}

func (f *fakeSource) GetName() string             { return string(f.platform) }
func (f *fakeSource) GetType() model.PlatformType { return f.platform }
func (f *fakeSource) FetchContests(ctx context.Context) []*model.RawContest {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil
		}
	}
	if f.panics {
		panic("selector engine exploded")
	}
	if f.records == nil {
		return nil
	}
	return f.records()
}

func sources(srcs ...interfaces.ContestSource) *adapter.PlatformRegistry {
	return adapter.NewStaticRegistry(quietLogger(), srcs...)
}

func raw(platform model.PlatformType, name string, start time.Time, minutes int) *model.RawContest {
	return &model.RawContest{
		Name:      name,
		Platform:  platform,
		URL:       fmt.Sprintf("https://example.com/%s/%d", platform.Key(), start.Unix()),
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// memContestRepo 内存版比赛仓储，合并语义与数据库实现一致
type memContestRepo struct {
	mu     sync.Mutex
	rows   map[string]*model.Contest
	order  []string
	failOn map[string]bool
}

func newMemContestRepo() *memContestRepo {
	return &memContestRepo{rows: map[string]*model.Contest{}, failOn: map[string]bool{}}
}

func (m *memContestRepo) UpsertContest(_ context.Context, c *model.Contest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[c.Name] {
		return false, fmt.Errorf("%w: write timeout", model.ErrReconciliationFailure)
	}
	key := c.NaturalKey()
	if row, ok := m.rows[key]; ok {
		row.URL, row.Status, row.Duration, row.EndTime = c.URL, c.Status, c.Duration, c.EndTime
		row.UpdatedAt = time.Now()
		return false, nil
	}
	cp := *c
	cp.ID = uint64(len(m.order) + 1)
	cp.SolutionLink = nil
	m.rows[key] = &cp
	m.order = append(m.order, key)
	return true, nil
}

func (m *memContestRepo) all() []*model.Contest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Contest, 0, len(m.order))
	for _, k := range m.order {
		cp := *m.rows[k]
		out = append(out, &cp)
	}
	return out
}

func (m *memContestRepo) byName(name string) *model.Contest {
	for _, c := range m.all() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *memContestRepo) setSolutionLink(name, link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Name == name {
			l := link
			row.SolutionLink = &l
		}
	}
}

type memRunRepo struct {
	mu   sync.Mutex
	runs []*model.SyncRun
}

func (m *memRunRepo) SaveRun(_ context.Context, run *model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRunRepo) LatestRun(context.Context) (*model.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, repository.ErrNoSyncRun
	}
	return m.runs[len(m.runs)-1], nil
}

type memIndexer struct {
	indexed int
	names   []string
}

func (m *memIndexer) IndexContests(_ context.Context, contests []*model.Contest) error {
	m.indexed += len(contests)
	for _, c := range contests {
		m.names = append(m.names, c.Name)
	}
	return nil
}

package crawler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/githubapi"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/internal/rater"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

var testDbSeq int64

type testEnv struct {
	config *cfg.Config
	logger log.Logger
	userMd *model.User
	edgeMd *model.Edge
	source *fakeProfileSource
	edges  *fakeEdgeSource
	rater  *fakeRater
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load mock config: %v", err)
	}
	config.Sqlite.Path = fmt.Sprintf("file:crawler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDbSeq, 1))
	conn, err := db.NewSqlite(config)
	if err != nil {
		t.Fatalf("failed to create sqlite connector: %v", err)
	}
	if err := conn.Migrate(&model.User{}, &model.Edge{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger, _ := log.NewNopLogger()
	userMd, err := model.NewUser(config, logger, conn)
	if err != nil {
		t.Fatalf("failed to create user model: %v", err)
	}
	edgeMd, err := model.NewEdge(config, logger, conn)
	if err != nil {
		t.Fatalf("failed to create edge model: %v", err)
	}

	return &testEnv{
		config: config,
		logger: logger,
		userMd: userMd,
		edgeMd: edgeMd,
		source: newFakeProfileSource(),
		edges:  newFakeEdgeSource(),
		rater:  newFakeRater(70),
	}
}

func (e *testEnv) processor() *Processor {
	return NewProcessor(e.logger, e.config, e.userMd, e.source, nil, e.rater)
}

func (e *testEnv) discoverer() *Discoverer {
	return NewDiscoverer(e.logger, e.config, e.userMd, e.edgeMd, e.edges)
}

func (e *testEnv) scheduler(publisher LeadPublisher) *Scheduler {
	return NewScheduler(e.logger, e.config, e.userMd, e.processor(), e.discoverer(), publisher)
}

// goodProfile is complete enough to clear every filter check.
func goodProfile(login string) *githubapi.UserResponse {
	return &githubapi.UserResponse{
		Login:     login,
		Name:      "Test " + login,
		Location:  "Lisbon",
		Email:     login + "@example.com",
		Followers: 100,
		Following: 80,
		Bio:       "builds things",
		CreatedAt: time.Now().AddDate(-3, 0, 0),
	}
}

// goodContributions spreads weekday and weekend activity across ten months.
func goodContributions() *githubapi.ContributionResult {
	contrib := &githubapi.ContributionResult{Commits: 500}
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for m := 0; m < 10; m++ {
		monthStart := day.AddDate(0, m, 0)
		weekday := monthStart
		for weekday.Weekday() == time.Saturday || weekday.Weekday() == time.Sunday {
			weekday = weekday.AddDate(0, 0, 1)
		}
		weekend := monthStart
		for weekend.Weekday() != time.Saturday {
			weekend = weekend.AddDate(0, 0, 1)
		}
		contrib.Calendar = append(contrib.Calendar,
			githubapi.ContributionDay{Date: weekday.Format("2006-01-02"), Count: 5},
			githubapi.ContributionDay{Date: weekend.Format("2006-01-02"), Count: 3},
		)
		contrib.CalendarTotal += 8
	}
	return contrib
}

type fakeProfileSource struct {
	mu            sync.Mutex
	profiles      map[string]*githubapi.UserResponse
	contributions map[string]*githubapi.ContributionResult
	fetchErr      map[string]error
	contribErr    map[string]error
	fetchCalls    map[string]int
}

func newFakeProfileSource() *fakeProfileSource {
	return &fakeProfileSource{
		profiles:      make(map[string]*githubapi.UserResponse),
		contributions: make(map[string]*githubapi.ContributionResult),
		fetchErr:      make(map[string]error),
		contribErr:    make(map[string]error),
		fetchCalls:    make(map[string]int),
	}
}

func (f *fakeProfileSource) FetchUser(ctx context.Context, login string) (*githubapi.UserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls[login]++
	if err := f.fetchErr[login]; err != nil {
		return nil, err
	}
	if profile, ok := f.profiles[login]; ok {
		return profile, nil
	}
	return goodProfile(login), nil
}

func (f *fakeProfileSource) FetchContributions(ctx context.Context, login string) (*githubapi.ContributionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contribErr[login]; err != nil {
		return nil, err
	}
	if contrib, ok := f.contributions[login]; ok {
		return contrib, nil
	}
	return goodContributions(), nil
}

func (f *fakeProfileSource) calls(login string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls[login]
}

type fakeEdgeSource struct {
	mu        sync.Mutex
	following map[string][]string
	followers map[string][]string
	err       error
	pageCalls int
}

func newFakeEdgeSource() *fakeEdgeSource {
	return &fakeEdgeSource{
		following: make(map[string][]string),
		followers: make(map[string][]string),
	}
}

func (f *fakeEdgeSource) ListConnections(ctx context.Context, login, direction string, page, perPage int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	if f.err != nil {
		return nil, f.err
	}
	list := f.following[login]
	if direction == model.DirectionFollowers {
		list = f.followers[login]
	}
	start := (page - 1) * perPage
	if start >= len(list) {
		return nil, nil
	}
	end := start + perPage
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], nil
}

type fakeRater struct {
	mu    sync.Mutex
	score float64
	err   error
	calls map[string]int
}

func newFakeRater(score float64) *fakeRater {
	return &fakeRater{score: score, calls: make(map[string]int)}
}

func (f *fakeRater) Rate(ctx context.Context, user *model.User) (*rater.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[user.Login]++
	if f.err != nil {
		return nil, f.err
	}
	return &rater.Result{
		Score:     f.score,
		Breakdown: model.RatingBreakdown{"experience": f.score},
		Tags:      model.StringList{"backend"},
	}, nil
}

func (f *fakeRater) ratedCount(login string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[login]
}

func (f *fakeRater) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []model.LeadMessage
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := value.(model.LeadMessage)
	if !ok {
		return fmt.Errorf("unexpected message type %T", value)
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) published() []model.LeadMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.LeadMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

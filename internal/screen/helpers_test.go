package screen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/runtime"
)

// fakeBroker is an in-memory JobBroker for engine tests.
type fakeBroker struct {
	active    []broker.JobInfo
	pending   []broker.JobInfo
	completed []broker.JobInfo
	queues    []broker.QueueStats
	ended     []string
	submitted []string
	paused    map[string]bool
	err       error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{paused: map[string]bool{}}
}

func (f *fakeBroker) Submit(taskType string, payload map[string]any, queue string, delay time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := fmt.Sprintf("job-%d", len(f.submitted)+1)
	f.submitted = append(f.submitted, taskType)
	return id, nil
}

func (f *fakeBroker) Active() ([]broker.JobInfo, error)    { return f.active, f.err }
func (f *fakeBroker) Pending() ([]broker.JobInfo, error)   { return f.pending, f.err }
func (f *fakeBroker) Completed() ([]broker.JobInfo, error) { return f.completed, f.err }

func (f *fakeBroker) Job(queue, id string) (*broker.JobInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, j := range append(append([]broker.JobInfo{}, f.active...), f.pending...) {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, nil
}

func (f *fakeBroker) End(queue, id string) error {
	if f.err != nil {
		return f.err
	}
	f.ended = append(f.ended, id)
	return nil
}

func (f *fakeBroker) HoldQueue(queue string) error    { f.paused[queue] = true; return f.err }
func (f *fakeBroker) ReleaseQueue(queue string) error { f.paused[queue] = false; return f.err }
func (f *fakeBroker) Queues() ([]broker.QueueStats, error) {
	return f.queues, f.err
}

// fakeRuntime is an in-memory ServiceRuntime for engine tests.
type fakeRuntime struct {
	services []runtime.Service
	logs     map[string][]string
	actions  []string
	err      error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{logs: map[string][]string{}}
}

func (f *fakeRuntime) List(ctx context.Context) ([]runtime.Service, error) {
	return f.services, f.err
}

func (f *fakeRuntime) Inspect(ctx context.Context, name string) (*runtime.ServiceDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.services {
		if s.Name == name {
			return &runtime.ServiceDetail{Service: s}, nil
		}
	}
	return nil, nil
}

func (f *fakeRuntime) Start(ctx context.Context, name string) error {
	f.actions = append(f.actions, "start "+name)
	return f.err
}

func (f *fakeRuntime) Stop(ctx context.Context, name string) error {
	f.actions = append(f.actions, "stop "+name)
	return f.err
}

func (f *fakeRuntime) Restart(ctx context.Context, name string) error {
	f.actions = append(f.actions, "restart "+name)
	return f.err
}

func (f *fakeRuntime) Logs(ctx context.Context, name string, tail int) ([]string, error) {
	return f.logs[name], f.err
}

type testEnv struct {
	engine  *Engine
	broker  *fakeBroker
	runtime *fakeRuntime
	deps    Deps
}

// newTestEnv builds an engine over an in-memory database with the
// default seed data and fake broker/runtime collaborators.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	if err := database.SeedDefaults(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	fb := newFakeBroker()
	fr := newFakeRuntime()
	users := repository.NewUserRepo(db)
	deps := Deps{
		Users:      users,
		Commands:   repository.NewCommandRepo(db),
		Messages:   repository.NewMessageRepo(db),
		Spool:      repository.NewSpoolRepo(db),
		Schedule:   repository.NewScheduleRepo(db),
		Subsystems: repository.NewSubsystemRepo(db),
		Objects:    repository.NewObjectRepo(db),
		AuthLists:  repository.NewAuthListRepo(db),
		SysValues:  repository.NewSystemValueRepo(db),
		History:    repository.NewHistoryRepo(db),
		Auth:       auth.NewAuthenticator(users),
		Broker:     fb,
		Runtime:    fr,
		StartedAt:  time.Now(),
	}
	return &testEnv{engine: NewEngine(deps), broker: fb, runtime: fr, deps: deps}
}

// signOn authenticates a fresh session as the given default user
// (default profiles use their name as password).
func (env *testEnv) signOn(t *testing.T, user string) *Session {
	t.Helper()
	sess := NewSession("test")
	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{
		"user": user, "password": user,
	})
	if res.Screen != "main" || !sess.Authenticated {
		t.Fatalf("sign-on as %s failed: screen=%s message=%q", user, res.Screen, res.Message)
	}
	return sess
}

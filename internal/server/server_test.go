package server

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/runtime"
	"github.com/oplab/lab400/internal/screen"
)

type noopBroker struct{}

func (noopBroker) Submit(string, map[string]any, string, time.Duration) (string, error) {
	return "job-1", nil
}
func (noopBroker) Active() ([]broker.JobInfo, error)    { return nil, nil }
func (noopBroker) Pending() ([]broker.JobInfo, error)   { return nil, nil }
func (noopBroker) Completed() ([]broker.JobInfo, error) { return nil, nil }
func (noopBroker) Job(string, string) (*broker.JobInfo, error) {
	return nil, nil
}
func (noopBroker) End(string, string) error             { return nil }
func (noopBroker) HoldQueue(string) error               { return nil }
func (noopBroker) ReleaseQueue(string) error            { return nil }
func (noopBroker) Queues() ([]broker.QueueStats, error) { return nil, nil }

type noopRuntime struct{}

func (noopRuntime) List(context.Context) ([]runtime.Service, error) { return nil, nil }
func (noopRuntime) Inspect(context.Context, string) (*runtime.ServiceDetail, error) {
	return nil, nil
}
func (noopRuntime) Start(context.Context, string) error   { return nil }
func (noopRuntime) Stop(context.Context, string) error    { return nil }
func (noopRuntime) Restart(context.Context, string) error { return nil }
func (noopRuntime) Logs(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func newTestServer(t *testing.T, signonPerMin, signonBurst int, timeout time.Duration) (*Server, *SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedDefaults(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	users := repository.NewUserRepo(db)
	engine := screen.NewEngine(screen.Deps{
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
		Broker:     noopBroker{},
		Runtime:    noopRuntime{},
		StartedAt:  time.Now(),
	})
	store := NewSessionStore()
	log := slog.New(slog.DiscardHandler)
	return New(engine, store, timeout, signonPerMin, signonBurst, log), store
}

func TestDispatchSignonFlow(t *testing.T) {
	srv, store := newTestServer(t, 10, 5, 30*time.Minute)
	sess := store.Create()

	res := srv.dispatch(context.Background(), sess, "10.0.0.1:5000", Action{Action: "init"})
	if res.Screen != "signon" {
		t.Fatalf("init screen = %s, want signon", res.Screen)
	}
	res = srv.dispatch(context.Background(), sess, "10.0.0.1:5000", Action{
		Action: "submit",
		Fields: map[string]string{"user": "QSECOFR", "password": "QSECOFR"},
	})
	if res.Screen != "main" || !res.Authenticated {
		t.Fatalf("screen = %s auth=%v, want main/authenticated", res.Screen, res.Authenticated)
	}
}

func TestSignonRateLimit(t *testing.T) {
	srv, store := newTestServer(t, 1, 2, 30*time.Minute)
	sess := store.Create()

	bad := Action{Action: "submit", Fields: map[string]string{"user": "QUSER", "password": "WRONG"}}
	srv.dispatch(context.Background(), sess, "10.0.0.2:5000", bad)
	srv.dispatch(context.Background(), sess, "10.0.0.2:5000", bad)
	res := srv.dispatch(context.Background(), sess, "10.0.0.2:5000", bad)
	if res.Message == "" || res.MessageLevel != screen.LevelError ||
		!strings.Contains(res.Message, "Too many sign-on attempts") {
		t.Fatalf("message = %q/%q, want rate-limit message", res.Message, res.MessageLevel)
	}

	// A different address is not affected.
	res = srv.dispatch(context.Background(), sess, "10.0.0.3:5000", Action{
		Action: "submit",
		Fields: map[string]string{"user": "QSECOFR", "password": "QSECOFR"},
	})
	if res.Screen != "main" {
		t.Fatalf("other address blocked: screen = %s message = %q", res.Screen, res.Message)
	}
}

func TestRateLimitDoesNotApplyAfterSignon(t *testing.T) {
	srv, store := newTestServer(t, 1, 1, 30*time.Minute)
	sess := store.Create()

	res := srv.dispatch(context.Background(), sess, "10.0.0.4:5000", Action{
		Action: "submit",
		Fields: map[string]string{"user": "QSECOFR", "password": "QSECOFR"},
	})
	if res.Screen != "main" {
		t.Fatalf("sign-on failed: %q", res.Message)
	}
	// Burst exhausted, but authenticated actions pass untouched.
	for i := 0; i < 5; i++ {
		res = srv.dispatch(context.Background(), sess, "10.0.0.4:5000", Action{
			Action:  "command",
			Command: "DSPSYSSTS",
		})
	}
	if res.Screen != "dspsyssts" {
		t.Fatalf("screen = %s, want dspsyssts", res.Screen)
	}
}

func TestMalformedActionRerendersCurrentScreen(t *testing.T) {
	srv, store := newTestServer(t, 10, 5, 30*time.Minute)
	sess := store.Create()

	res := srv.dispatch(context.Background(), sess, "10.0.0.5:5000", Action{Action: "bogus"})
	if res.Screen != "signon" {
		t.Fatalf("screen = %s, want signon", res.Screen)
	}
}

func TestSessionExpiry(t *testing.T) {
	srv, store := newTestServer(t, 10, 5, time.Minute)
	sess := store.Create()
	srv.dispatch(context.Background(), sess, "10.0.0.6:5000", Action{
		Action: "submit",
		Fields: map[string]string{"user": "QSECOFR", "password": "QSECOFR"},
	})

	sess.LastActive = time.Now().Add(-2 * time.Minute)
	if !sess.Touch(srv.timeout) {
		t.Fatal("expected expiry")
	}
	res := srv.expire(context.Background(), sess)
	if !res.Terminated || res.Screen != "signon" {
		t.Fatalf("expire frame = %s terminated=%v", res.Screen, res.Terminated)
	}
	if !strings.Contains(res.Message, "expired") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	a := store.Create()
	b := store.Create()
	if a.ID == b.ID {
		t.Fatal("session ids must be unique")
	}
	if store.Count() != 2 {
		t.Fatalf("count = %d, want 2", store.Count())
	}
	if store.Get(a.ID) != a {
		t.Fatal("lookup returned wrong session")
	}
	store.Remove(a.ID)
	if store.Get(a.ID) != nil || store.Count() != 1 {
		t.Fatal("remove did not take")
	}
}

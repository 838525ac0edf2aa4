package fixer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/oplab/lab400/internal/runtime"
)

type fakeContainers struct {
	actions []string
	state   string
	health  string
	err     error
}

func (f *fakeContainers) List(ctx context.Context) ([]runtime.Service, error) { return nil, f.err }

func (f *fakeContainers) Start(ctx context.Context, name string) error {
	f.actions = append(f.actions, "start "+name)
	return f.err
}

func (f *fakeContainers) Stop(ctx context.Context, name string) error {
	f.actions = append(f.actions, "stop "+name)
	return f.err
}

func (f *fakeContainers) Restart(ctx context.Context, name string) error {
	f.actions = append(f.actions, "restart "+name)
	return f.err
}

func (f *fakeContainers) Inspect(ctx context.Context, name string) (*runtime.ServiceDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &runtime.ServiceDetail{
		Service: runtime.Service{Name: name, State: f.state, Health: f.health},
	}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFingerprintStable(t *testing.T) {
	a := Issue{Service: "Plex", Condition: "unhealthy", Detail: "x"}
	b := Issue{Service: "plex", Condition: "UNHEALTHY", Detail: "different detail"}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("fingerprint should ignore case and detail")
	}
	c := Issue{Service: "plex", Condition: "exited"}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatal("different conditions must not collide")
	}
	if len(a.Fingerprint()) != 16 {
		t.Fatalf("fingerprint length = %d, want 16", len(a.Fingerprint()))
	}
}

func TestRunbookCovers(t *testing.T) {
	rb := Runbook{Service: "plex"}
	if !rb.covers("anything") {
		t.Fatal("empty conditions should cover everything")
	}
	rb.Conditions = []string{"unhealthy"}
	if !rb.covers("UNHEALTHY") || rb.covers("exited") {
		t.Fatal("condition matching broken")
	}
}

func TestLoadRunbooks(t *testing.T) {
	dir := t.TempDir()
	book := `service: plex
description: Restart plex when unhealthy
conditions: [unhealthy]
steps:
  - action: restart
  - action: wait
    wait_seconds: 10
escalate: true
`
	if err := os.WriteFile(filepath.Join(dir, "plex.yaml"), []byte(book), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	books, err := LoadRunbooks(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("loaded %d runbooks, want 1", len(books))
	}
	rb := books["plex"]
	if len(rb.Steps) != 2 || rb.Steps[0].Action != "restart" || rb.Steps[1].WaitSeconds != 10 {
		t.Fatalf("runbook = %+v", rb)
	}
	if !rb.Escalate {
		t.Fatal("escalate flag lost")
	}
}

func TestLoadRunbooksMissingDir(t *testing.T) {
	books, err := LoadRunbooks(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("books = %v", books)
	}
}

func TestHandleIssueRunbookRemediates(t *testing.T) {
	containers := &fakeContainers{state: "RUNNING", health: "HEALTHY"}
	runbooks := map[string]Runbook{
		"plex": {Service: "plex", Steps: []Step{{Action: "restart"}}},
	}
	f := New(runbooks, containers, nil, nil, nil, discard())

	if err := f.HandleIssue(context.Background(), Issue{Service: "plex", Condition: "unhealthy"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(containers.actions) != 1 || containers.actions[0] != "restart plex" {
		t.Fatalf("actions = %v", containers.actions)
	}
}

func TestHandleIssueStepTargetsOtherService(t *testing.T) {
	containers := &fakeContainers{state: "RUNNING", health: ""}
	runbooks := map[string]Runbook{
		"app": {Service: "app", Steps: []Step{
			{Action: "restart", Target: "db"},
			{Action: "restart"},
		}},
	}
	f := New(runbooks, containers, nil, nil, nil, discard())

	if err := f.HandleIssue(context.Background(), Issue{Service: "app", Condition: "exited"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(containers.actions) != 2 ||
		containers.actions[0] != "restart db" || containers.actions[1] != "restart app" {
		t.Fatalf("actions = %v", containers.actions)
	}
}

func TestRunStepsUnknownAction(t *testing.T) {
	containers := &fakeContainers{state: "RUNNING"}
	f := New(nil, containers, nil, nil, nil, discard())

	rb := Runbook{Service: "plex", Steps: []Step{{Action: "reboot"}}}
	fixed, err := f.runSteps(context.Background(), rb, Issue{Service: "plex"})
	if fixed || err == nil {
		t.Fatalf("fixed=%v err=%v, want failure", fixed, err)
	}
}

func TestHealthyStates(t *testing.T) {
	cases := []struct {
		name   string
		state  string
		health string
		want   bool
	}{
		{"running healthy", "RUNNING", "HEALTHY", true},
		{"running no healthcheck", "RUNNING", "", true},
		{"running unhealthy", "RUNNING", "UNHEALTHY", false},
		{"exited", "EXITED", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			containers := &fakeContainers{state: tc.state, health: tc.health}
			f := New(nil, containers, nil, nil, nil, discard())
			got, err := f.healthy(context.Background(), "svc")
			if err != nil {
				t.Fatalf("healthy: %v", err)
			}
			if got != tc.want {
				t.Fatalf("healthy = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunbookFailureFallsThrough(t *testing.T) {
	containers := &fakeContainers{err: errors.New("daemon down")}
	runbooks := map[string]Runbook{
		"plex": {Service: "plex", Steps: []Step{{Action: "restart"}}},
	}
	f := New(runbooks, containers, nil, nil, nil, discard())

	// No advisor and no notifier configured; the chain must still
	// complete without returning the step error.
	if err := f.HandleIssue(context.Background(), Issue{Service: "plex", Condition: "unhealthy"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

package screen

import (
	"context"
	"testing"

	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/database/repository"
)

func TestF3FromSignonTerminates(t *testing.T) {
	env := newTestEnv(t)
	sess := NewSession("t")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F3", "", nil)
	if !res.Terminated {
		t.Fatal("F3 on sign-on should terminate the session")
	}
}

func TestF3FromMainStaysOnMain(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F3", "", nil)
	if res.Screen != "main" || res.Terminated {
		t.Fatalf("screen = %s terminated=%v, want main", res.Screen, res.Terminated)
	}
}

func TestF3FromWorkScreenReturnsToMain(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "dsplog")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F3", "", nil)
	if res.Screen != "main" {
		t.Fatalf("screen = %s, want main", res.Screen)
	}
}

func TestF12FollowsParent(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "jobdetail")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F12", "", nil)
	if res.Screen != "wrkactjob" {
		t.Fatalf("screen = %s, want wrkactjob", res.Screen)
	}
}

func TestF12RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.broker.active = []broker.JobInfo{
		{ID: "abc-123", Type: "lab400:ping", Queue: "QBATCH", State: "ACTIVE"},
	}
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "wrkactjob")

	// Enter the child, F12 back, enter it again.
	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{"opt_abc-123": "5"})
	if res.Screen != "jobdetail" {
		t.Fatalf("screen = %s, want jobdetail", res.Screen)
	}
	res = env.engine.HandleFunctionKey(context.Background(), sess, "F12", "", nil)
	if res.Screen != "wrkactjob" {
		t.Fatalf("after F12 screen = %s, want wrkactjob", res.Screen)
	}
	res = env.engine.HandleSubmit(context.Background(), sess, map[string]string{"opt_abc-123": "5"})
	if res.Screen != "jobdetail" {
		t.Fatalf("re-entry screen = %s, want jobdetail", res.Screen)
	}
}

func TestF12OnMainIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F12", "", nil)
	if res.Screen != "main" {
		t.Fatalf("screen = %s, want main", res.Screen)
	}
}

func TestRollAdjustsOffset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		err := env.deps.Schedule.Add(ctx, repository.ScheduleEntry{
			Name:     sprintName(i),
			Command:  "lab400:ping",
			Schedule: "0 * * * *",
		})
		if err != nil {
			t.Fatalf("seed schedule: %v", err)
		}
	}
	sess := env.signOn(t, "QSYSOPR")
	env.engine.Get(ctx, sess, "wrkjobscde") // page size 10

	env.engine.HandleFunctionKey(ctx, sess, "PAGEDOWN", "", nil)
	env.engine.HandleFunctionKey(ctx, sess, "PAGEDOWN", "", nil)
	env.engine.HandleFunctionKey(ctx, sess, "PAGEUP", "", nil)
	if got := sess.Offset("wrkjobscde"); got != 10 {
		t.Fatalf("offset = %d, want 10", got)
	}
}

func TestRollUpFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "dsplog")

	env.engine.HandleFunctionKey(context.Background(), sess, "PAGEUP", "", nil)
	if got := sess.Offset("dsplog"); got != 0 {
		t.Fatalf("offset = %d, want 0", got)
	}
}

func TestUndefinedKeyIsNoOpRerender(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "dspsyssts")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F9", "", nil)
	if res.Screen != "dspsyssts" {
		t.Fatalf("screen = %s, want dspsyssts", res.Screen)
	}
}

func TestF6OpensCreateOnWrkusrprf(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "wrkusrprf")

	res := env.engine.HandleFunctionKey(context.Background(), sess, "F6", "", nil)
	if res.Screen != "crtusrprf" {
		t.Fatalf("screen = %s, want crtusrprf", res.Screen)
	}
}

func TestFunctionKeyNamesAreNormalized(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "wrkusrprf")

	// Clients may send padded or lower-case key names; the per-screen
	// F6 binding must still resolve.
	res := env.engine.HandleFunctionKey(context.Background(), sess, " f6 ", "", nil)
	if res.Screen != "crtusrprf" {
		t.Fatalf("screen = %s, want crtusrprf", res.Screen)
	}
}

func sprintName(i int) string {
	return string(rune('A'+i/10)) + string(rune('A'+i%10)) + "ENTRY"
}

package screen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oplab/lab400/internal/broker"
)

func TestSignonWithValidCredentials(t *testing.T) {
	env := newTestEnv(t)
	sess := NewSession("t")

	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{
		"user": "QUSER", "password": "QUSER",
	})
	if res.Screen != "main" {
		t.Fatalf("screen = %s, want main", res.Screen)
	}
	if sess.User != "QUSER" || !sess.Authenticated {
		t.Fatalf("user = %s auth=%v", sess.User, sess.Authenticated)
	}
	if !res.Authenticated {
		t.Fatal("result should carry authenticated flag")
	}
}

func TestSignonWithBadPasswordStays(t *testing.T) {
	env := newTestEnv(t)
	sess := NewSession("t")

	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{
		"user": "QUSER", "password": "WRONG",
	})
	if res.Screen != "signon" || sess.Authenticated {
		t.Fatalf("screen = %s auth=%v, want signon/unauthenticated", res.Screen, sess.Authenticated)
	}
	if res.MessageLevel != LevelError {
		t.Fatalf("message level = %q, want error", res.MessageLevel)
	}
	if _, ok := sess.FieldValues["password"]; ok {
		t.Fatal("password must not persist in session fields")
	}
}

func TestCommandFromMainNavigates(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.ResolveCommand(context.Background(), sess, "WRKACTJOB")
	if res.Screen != "wrkactjob" || sess.CurrentScreen != "wrkactjob" {
		t.Fatalf("screen = %s/%s, want wrkactjob", res.Screen, sess.CurrentScreen)
	}
}

func TestUnknownCommandLeavesScreenUnchanged(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.ResolveCommand(context.Background(), sess, "XYZNOTACOMMAND")
	if sess.CurrentScreen != "main" {
		t.Fatalf("current screen = %s, want main", sess.CurrentScreen)
	}
	if res.MessageLevel != LevelError {
		t.Fatalf("message level = %q, want error", res.MessageLevel)
	}
}

func TestMessageShowsInExactlyOneRender(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.ResolveCommand(context.Background(), sess, "NOPE")
	if res.Message == "" {
		t.Fatal("first render should carry the message")
	}
	res = env.engine.Render(context.Background(), sess)
	if res.Message != "" {
		t.Fatalf("second render message = %q, want empty", res.Message)
	}
}

func TestUnregisteredScreenFallsBackToMain(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.Get(context.Background(), sess, "nosuchscreen")
	if res.Screen != "main" || sess.CurrentScreen != "main" {
		t.Fatalf("screen = %s, want main", res.Screen)
	}
}

func TestUnauthenticatedSessionSeesOnlySignon(t *testing.T) {
	env := newTestEnv(t)
	sess := NewSession("t")

	res := env.engine.Get(context.Background(), sess, "wrkactjob")
	if res.Screen != "signon" {
		t.Fatalf("screen = %s, want signon", res.Screen)
	}
}

func TestAuthorityGateRedirectsToMain(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QUSER")

	res := env.engine.Get(context.Background(), sess, "wrkusrprf")
	if res.Screen != "main" {
		t.Fatalf("screen = %s, want main", res.Screen)
	}
	if res.MessageLevel != LevelError || !strings.Contains(res.Message, "Not authorized") {
		t.Fatalf("message = %q/%q", res.Message, res.MessageLevel)
	}
}

func TestOperatorClassSatisfiesServiceScreen(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSYSOPR")

	res := env.engine.Get(context.Background(), sess, "wrksvc")
	if res.Screen != "wrksvc" {
		t.Fatalf("screen = %s, want wrksvc", res.Screen)
	}
}

func TestBrokerFailureBecomesMessage(t *testing.T) {
	env := newTestEnv(t)
	env.broker.err = errors.New("broker unreachable")
	sess := env.signOn(t, "QSECOFR")

	res := env.engine.Get(context.Background(), sess, "wrkactjob")
	if res.Screen != "wrkactjob" {
		t.Fatalf("screen = %s, want wrkactjob", res.Screen)
	}
	if res.MessageLevel != LevelError || !strings.Contains(res.Message, "unavailable") {
		t.Fatalf("message = %q/%q", res.Message, res.MessageLevel)
	}
	// State machine intact: next action still works.
	env.broker.err = nil
	res = env.engine.HandleFunctionKey(context.Background(), sess, "F5", "", nil)
	if res.Screen != "wrkactjob" || res.Message != "" {
		t.Fatalf("recovery render = %s/%q", res.Screen, res.Message)
	}
}

func TestEndJobOption(t *testing.T) {
	env := newTestEnv(t)
	env.broker.active = []broker.JobInfo{
		{ID: "job-1", Type: "lab400:delay", Queue: "QBATCH", State: "ACTIVE"},
	}
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "wrkactjob")

	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{"opt_job-1": "4"})
	if len(env.broker.ended) != 1 || env.broker.ended[0] != "job-1" {
		t.Fatalf("ended = %v", env.broker.ended)
	}
	if !strings.Contains(res.Message, "ended") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSubmitJobEnqueues(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "sbmjob")

	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{
		"task": "lab400:ping", "jobq": "QBATCH", "delay": "5",
	})
	if len(env.broker.submitted) != 1 || env.broker.submitted[0] != "lab400:ping" {
		t.Fatalf("submitted = %v", env.broker.submitted)
	}
	if !strings.Contains(res.Message, "submitted") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSubmitJobRejectsBadDelay(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signOn(t, "QSECOFR")
	env.engine.Get(context.Background(), sess, "sbmjob")

	res := env.engine.HandleSubmit(context.Background(), sess, map[string]string{
		"task": "lab400:ping", "delay": "not-a-number",
	})
	if len(env.broker.submitted) != 0 {
		t.Fatalf("submitted = %v, want none", env.broker.submitted)
	}
	if res.MessageLevel != LevelError {
		t.Fatalf("message = %q/%q", res.Message, res.MessageLevel)
	}
}

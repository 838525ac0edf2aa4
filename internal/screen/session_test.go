package screen

import (
	"testing"
	"time"
)

func TestMessageIsSingleShot(t *testing.T) {
	sess := NewSession("t")
	sess.SetMessage(LevelError, "boom")

	msg, level := sess.TakeMessage()
	if msg != "boom" || level != LevelError {
		t.Fatalf("first take = %q/%q", msg, level)
	}
	msg, level = sess.TakeMessage()
	if msg != "" || level != "" {
		t.Fatalf("second take = %q/%q, want empty", msg, level)
	}
}

func TestSetOffsetFloorsAtZero(t *testing.T) {
	sess := NewSession("t")
	sess.SetOffset("list", -5)
	if got := sess.Offset("list"); got != 0 {
		t.Fatalf("offset = %d, want 0", got)
	}
}

func TestParseUserClass(t *testing.T) {
	tests := []struct {
		in   string
		want UserClass
	}{
		{"*SECOFR", ClassSecOfr},
		{" *sysopr ", ClassSysOpr},
		{"*WIZARD", ClassUser},
		{"", ClassUser},
	}
	for _, tt := range tests {
		if got := ParseUserClass(tt.in); got != tt.want {
			t.Errorf("ParseUserClass(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserClassAtLeast(t *testing.T) {
	if !ClassSecOfr.AtLeast(ClassSecAdm) {
		t.Error("*SECOFR should satisfy *SECADM")
	}
	if ClassUser.AtLeast(ClassSysOpr) {
		t.Error("*USER should not satisfy *SYSOPR")
	}
	if !ClassPgmr.AtLeast(ClassPgmr) {
		t.Error("class should satisfy itself")
	}
}

func TestSignOffResetsState(t *testing.T) {
	sess := NewSession("t")
	sess.User = "QSECOFR"
	sess.Class = ClassSecOfr
	sess.Authenticated = true
	sess.CurrentScreen = "wrkactjob"
	sess.FieldValues["cmd"] = "WRK"
	sess.SetOffset("wrkactjob", 20)
	sess.Prompt = &PromptContext{Return: "wrkactjob"}
	sess.SetMessage(LevelInfo, "stale")

	sess.SignOff()

	if sess.Authenticated || sess.User != "QUSER" || sess.Class != ClassUser {
		t.Fatalf("identity not reset: %s/%s auth=%v", sess.User, sess.Class, sess.Authenticated)
	}
	if sess.CurrentScreen != "signon" {
		t.Fatalf("screen = %s, want signon", sess.CurrentScreen)
	}
	if len(sess.FieldValues) != 0 || len(sess.PageOffsets) != 0 || sess.Prompt != nil {
		t.Fatal("session state not cleared")
	}
	if msg, _ := sess.TakeMessage(); msg != "" {
		t.Fatalf("stale message survived sign-off: %q", msg)
	}
}

func TestTouchReportsExpiry(t *testing.T) {
	sess := NewSession("t")
	sess.LastActive = time.Now().Add(-time.Hour)
	if !sess.Touch(30 * time.Minute) {
		t.Fatal("expected expiry")
	}
	if sess.Touch(30 * time.Minute) {
		t.Fatal("fresh touch should not report expiry")
	}
	sess.LastActive = time.Now().Add(-time.Hour)
	if sess.Touch(0) {
		t.Fatal("zero timeout should never expire")
	}
}

func TestClearFieldPrefix(t *testing.T) {
	sess := NewSession("t")
	sess.FieldValues["opt_A"] = "4"
	sess.FieldValues["opt_B"] = "5"
	sess.FieldValues["cmd"] = "GO"
	sess.ClearFieldPrefix("opt_")
	if len(sess.FieldValues) != 1 || sess.FieldValues["cmd"] != "GO" {
		t.Fatalf("fields = %v", sess.FieldValues)
	}
}

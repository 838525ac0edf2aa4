package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oplab/lab400/internal/auth"
)

func signonScreen() *ScreenDef {
	return &ScreenDef{
		Name:   "signon",
		Title:  "Sign On",
		Render: renderSignon,
		Submit: submitSignon,
	}
}

func renderSignon(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := []Row{
		{styled("title", centered(width, "Sign On"))},
		blankRow(),
		{styled("label", centered(width, "System  . . . . . :   LAB400"))},
		{styled("label", centered(width, "Subsystem . . . . :   QINTER"))},
		{styled("label", centered(width, "Display . . . . . :   QPADEV0001"))},
		blankRow(),
		blankRow(),
		{text(strings.Repeat(" ", 20)), styled("label", "User  . . . . . . . . . . . . "), field("user", 10, sess.Field("user"))},
		{text(strings.Repeat(" ", 20)), styled("label", "Password  . . . . . . . . . . "), password("password", 10)},
		blankRow(),
	}
	return RenderResult{
		Rows:  rows,
		Focus: "user",
		Keys:  []Key{{"F3", "Exit"}},
	}
}

func submitSignon(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	user := strings.TrimSpace(fields["user"])
	pass := fields["password"]
	sess.ClearFields("password")
	if user == "" {
		sess.SetMessage(LevelError, "User ID is required.")
		return e.Render(ctx, sess)
	}

	profile, err := e.deps.Auth.Authenticate(ctx, user, pass)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadCredentials), errors.Is(err, auth.ErrDisabled):
			sess.SetMessage(LevelError, err.Error())
		default:
			sess.SetMessage(LevelError, "Sign-on is not available. Try again later.")
		}
		return e.Render(ctx, sess)
	}

	sess.User = profile.Username
	sess.Class = ParseUserClass(profile.UserClass)
	sess.Authenticated = true
	sess.ClearFields("user")
	e.logHistory(ctx, sess, "*SIGNON", fmt.Sprintf("User %s signed on", sess.User))
	return e.Get(ctx, sess, "main")
}

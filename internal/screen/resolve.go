package screen

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/oplab/lab400/internal/database/repository"
)

// menuAliases are the built-in shortcuts: main menu option numbers and
// fixed mnemonics. They resolve before the command table and cannot be
// shadowed by it.
var menuAliases = map[string]string{
	"1":  "wrkactjob",
	"2":  "wrkjobq",
	"3":  "wrksvc",
	"4":  "dspsyssts",
	"5":  "dsplog",
	"6":  "sbmjob",
	"7":  "wrkusrprf",
	"8":  "wrkmsgq",
	"9":  "wrksplf",
	"10": "wrkjobscde",
	"90": "signoff",
	"GO": "main",
}

// ResolveCommand resolves a command-line token and navigates. The token
// is trimmed and upper-cased first. Resolution order: built-in aliases,
// exact command-table match, unique prefix match. Ambiguous prefixes
// and unknown commands leave the session on the current screen with a
// message; unknown commands also get a nearest-name suggestion when one
// is close enough.
func (e *Engine) ResolveCommand(ctx context.Context, sess *Session, token string) RenderResult {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return e.Render(ctx, sess)
	}
	sess.ClearFields("cmd")

	if target, ok := menuAliases[token]; ok {
		return e.navigate(ctx, sess, token, target)
	}
	if token == "SIGNOFF" {
		return e.navigate(ctx, sess, token, "signoff")
	}

	entries, err := e.deps.Commands.List(ctx, "")
	if err != nil {
		return e.fail(ctx, sess, fmt.Errorf("command table unavailable: %w", err))
	}
	var prefix []string
	for _, c := range entries {
		if c.Name == token {
			return e.navigate(ctx, sess, token, c.ScreenName)
		}
		if strings.HasPrefix(c.Name, token) {
			prefix = append(prefix, c.Name)
		}
	}
	switch len(prefix) {
	case 1:
		for _, c := range entries {
			if c.Name == prefix[0] {
				return e.navigate(ctx, sess, prefix[0], c.ScreenName)
			}
		}
	case 0:
		msg := fmt.Sprintf("Command %s not found.", token)
		if near := nearestCommand(token, entries); near != "" {
			msg = fmt.Sprintf("Command %s not found. Did you mean %s?", token, near)
		}
		sess.SetMessage(LevelError, msg)
		return e.Render(ctx, sess)
	}
	show := prefix
	if len(show) > 5 {
		show = show[:5]
	}
	sess.SetMessage(LevelError,
		fmt.Sprintf("Ambiguous command %s: %s", token, strings.Join(show, ", ")))
	return e.Render(ctx, sess)
}

// navigate is a successful resolution: any pending message is dropped
// and the session moves to the target screen.
func (e *Engine) navigate(ctx context.Context, sess *Session, token, target string) RenderResult {
	sess.ClearMessage()
	if target == "signoff" {
		e.logHistory(ctx, sess, "*SIGNOFF", fmt.Sprintf("User %s signed off", sess.User))
		sess.SignOff()
		sess.SetMessage(LevelInfo, "Sign-off complete.")
		return e.Get(ctx, sess, "signon")
	}
	e.logHistory(ctx, sess, "*CMD", fmt.Sprintf("Command %s executed", token))
	return e.Get(ctx, sess, target)
}

// nearestCommand returns the table entry closest to token by edit
// distance, when that distance is 2 or less. Ties go to the first name
// in table order, which is sorted, so suggestions are deterministic.
func nearestCommand(token string, entries []repository.CommandEntry) string {
	best, bestDist := "", 3
	for _, c := range entries {
		if d := levenshtein.ComputeDistance(token, c.Name); d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	return best
}

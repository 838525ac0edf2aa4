package screen

import (
	"context"
	"fmt"
	"strings"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/database/repository"
)

// User profile screens. Both require security administrator authority.

func wrkusrprfScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkusrprf",
		Title:              "Work with User Profiles",
		Render:             renderWrkusrprf,
		Submit:             submitWrkusrprf,
		Parent:             "main",
		MinClass:           ClassSecAdm,
		ResetOffsetOnEnter: true,
		Keys: map[string]KeyFunc{
			"F6": func(ctx context.Context, e *Engine, sess *Session) RenderResult {
				return e.Get(ctx, sess, "crtusrprf")
			},
		},
	}
}

func renderWrkusrprf(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with User Profiles")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  3=Disable   4=Delete   6=Enable"),
		blankRow(),
		Row{styled("label", "Opt  User        Class     Status      Last Sign-on")},
	)

	users, err := e.deps.Users.List(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "User profiles unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkusrprf", len(users), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(users))
	if len(users) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, u := range users[lo:hi] {
		last := "-"
		if u.LastSignon != nil {
			last = u.LastSignon.Format("2006-01-02 15:04")
		}
		rows = append(rows, Row{
			text(" "),
			field("opt_"+u.Username, 1, ""),
			text("   " + pad(u.Username, 12) + pad(u.UserClass, 10) + pad(u.Status, 12) + last),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F6", "Create"}, {"F12", "Cancel"}},
	}
}

func submitWrkusrprf(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	users, err := e.deps.Users.List(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("user profiles unavailable: %w", err))
	}
	acted := 0
	for _, u := range users {
		opt := strings.TrimSpace(fields["opt_"+u.Username])
		if opt == "" {
			continue
		}
		if u.Username == sess.User && (opt == "3" || opt == "4") {
			sess.ClearFieldPrefix("opt_")
			sess.SetMessage(LevelError, "Cannot disable or delete the current user profile.")
			return e.Render(ctx, sess)
		}
		if u.Username == "QSECOFR" && opt == "4" {
			sess.ClearFieldPrefix("opt_")
			sess.SetMessage(LevelError, "Profile QSECOFR cannot be deleted.")
			return e.Render(ctx, sess)
		}
		switch opt {
		case "3":
			err = e.deps.Users.SetStatus(ctx, u.Username, "*DISABLED")
		case "4":
			err = e.deps.Users.Delete(ctx, u.Username)
		case "6":
			err = e.deps.Users.SetStatus(ctx, u.Username, "*ENABLED")
		default:
			continue
		}
		if err != nil {
			sess.ClearFieldPrefix("opt_")
			return e.fail(ctx, sess, err)
		}
		e.logHistory(ctx, sess, "*USRPRF", fmt.Sprintf("Profile %s option %s", u.Username, opt))
		acted++
	}
	sess.ClearFieldPrefix("opt_")
	if acted > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d profile(s) changed.", acted))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func crtusrprfScreen() *ScreenDef {
	return &ScreenDef{
		Name:     "crtusrprf",
		Title:    "Create User Profile (CRTUSRPRF)",
		Render:   renderCrtusrprf,
		Submit:   submitCrtusrprf,
		Parent:   "wrkusrprf",
		MinClass: ClassSecAdm,
		Command:  "CRTUSRPRF",
		FieldParams: map[string]string{
			"usrcls": "USRCLS",
		},
	}
}

func renderCrtusrprf(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Create User Profile (CRTUSRPRF)")
	rows = append(rows,
		blankRow(),
		textRow("Type choices, press Enter. F4 on user class lists its values."),
		blankRow(),
		Row{styled("label", "  User profile  . . . . . . . "), field("usrname", 10, sess.Field("usrname"))},
		Row{styled("label", "  Password  . . . . . . . . . "), password("usrpass", 10)},
		Row{styled("label", "  User class  . . . . . . . . "), field("usrcls", 10, fieldValue(sess, "usrcls")), styled("label", "   *USER, F4 for list")},
		Row{styled("label", "  Description . . . . . . . . "), field("usrdesc", 40, sess.Field("usrdesc"))},
		blankRow(),
	)
	return RenderResult{
		Rows:  rows,
		Focus: "usrname",
		Keys:  []Key{{"F3", "Exit"}, {"F4", "Prompt"}, {"F12", "Cancel"}},
	}
}

func submitCrtusrprf(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	name := strings.ToUpper(sess.Field("usrname"))
	pass := fields["usrpass"]
	class := strings.ToUpper(sess.Field("usrcls"))
	desc := sess.Field("usrdesc")
	sess.ClearFields("usrpass")

	if name == "" {
		sess.SetMessage(LevelError, "User profile name is required.")
		return e.Render(ctx, sess)
	}
	if strings.TrimSpace(pass) == "" {
		sess.SetMessage(LevelError, "Password is required.")
		return e.Render(ctx, sess)
	}
	if class == "" {
		class = string(ClassUser)
	}
	if ParseUserClass(class) == ClassUser && class != string(ClassUser) {
		sess.SetMessage(LevelError, fmt.Sprintf("User class %s is not valid. Press F4 for a list.", class))
		return e.Render(ctx, sess)
	}

	existing, err := e.deps.Users.Get(ctx, name)
	if err != nil {
		return e.fail(ctx, sess, err)
	}
	if existing != nil {
		sess.SetMessage(LevelError, fmt.Sprintf("Profile %s already exists.", name))
		return e.Render(ctx, sess)
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return e.fail(ctx, sess, err)
	}
	err = e.deps.Users.Create(ctx, repository.UserProfile{
		Username:     name,
		PasswordHash: auth.HashPassword(pass, salt),
		Salt:         salt,
		UserClass:    class,
		Description:  desc,
	})
	if err != nil {
		return e.fail(ctx, sess, err)
	}
	sess.ClearFields("usrname", "usrcls", "usrdesc")
	e.logHistory(ctx, sess, "*USRPRF", fmt.Sprintf("Profile %s created", name))
	sess.SetMessage(LevelInfo, fmt.Sprintf("Profile %s created.", name))
	return e.Get(ctx, sess, "wrkusrprf")
}

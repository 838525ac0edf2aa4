package screen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oplab/lab400/internal/runtime"
)

// Service screens over the container runtime: list, per-service detail
// and the service log viewer.

const runtimeTimeout = 10 * time.Second

func wrksvcScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrksvc",
		Title:              "Work with Services",
		Render:             renderWrksvc,
		Submit:             submitWrksvc,
		Parent:             "main",
		MinClass:           ClassSysOpr,
		ResetOffsetOnEnter: true,
	}
}

func (e *Engine) listServices(ctx context.Context, sess *Session) []runtime.Service {
	rctx, cancel := context.WithTimeout(ctx, runtimeTimeout)
	defer cancel()
	services, err := e.deps.Runtime.List(rctx)
	if err != nil {
		sess.SetMessage(LevelError, "Service information unavailable: "+err.Error())
		return nil
	}
	return services
}

func renderWrksvc(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Services")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  2=Start   3=Stop   4=Restart   5=Display log   8=Details"),
		blankRow(),
		Row{styled("label", "Opt  Service               Status    Health      Image")},
	)

	services := e.listServices(ctx, sess)
	offset, ind := ClampOffset(sess, "wrksvc", len(services), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(services))
	if len(services) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, s := range services[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+s.Name, 1, ""),
			text("   " + pad(truncate(s.Name, 20), 22) + pad(s.State, 10) +
				pad(s.Health, 12) + truncate(s.Image, 30)),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrksvc(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	services := e.listServices(ctx, sess)
	acted := 0
	for _, s := range services {
		opt := strings.TrimSpace(fields["opt_"+s.Name])
		if opt == "" {
			continue
		}
		switch opt {
		case "5":
			sess.ClearFieldPrefix("opt_")
			sess.FieldValues["svc"] = s.Name
			sess.ResetOffset("svclog")
			return e.Get(ctx, sess, "svclog")
		case "8":
			sess.ClearFieldPrefix("opt_")
			sess.FieldValues["svc"] = s.Name
			return e.Get(ctx, sess, "svcdetail")
		}

		rctx, cancel := context.WithTimeout(ctx, runtimeTimeout)
		var err error
		var verb string
		switch opt {
		case "2":
			verb, err = "started", e.deps.Runtime.Start(rctx, s.Name)
		case "3":
			verb, err = "stopped", e.deps.Runtime.Stop(rctx, s.Name)
		case "4":
			verb, err = "restarted", e.deps.Runtime.Restart(rctx, s.Name)
		}
		cancel()
		if verb == "" {
			continue
		}
		if err != nil {
			sess.ClearFieldPrefix("opt_")
			return e.fail(ctx, sess, err)
		}
		e.logHistory(ctx, sess, "*SVC", fmt.Sprintf("Service %s %s", s.Name, verb))
		sess.SetMessage(LevelInfo, fmt.Sprintf("Service %s %s.", s.Name, verb))
		acted++
	}
	sess.ClearFieldPrefix("opt_")
	if acted == 0 {
		if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
			return e.ResolveCommand(ctx, sess, cmd)
		}
	}
	return e.Render(ctx, sess)
}

func svcDetailScreen() *ScreenDef {
	return &ScreenDef{
		Name:   "svcdetail",
		Title:  "Display Service Details",
		Render: renderSvcDetail,
		Parent: "wrksvc",
	}
}

func renderSvcDetail(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	name := sess.Field("svc")
	rows := titleRows(width, "Display Service Details")
	rows = append(rows, blankRow())

	rctx, cancel := context.WithTimeout(ctx, runtimeTimeout)
	defer cancel()
	var detail *runtime.ServiceDetail
	var err error
	if name != "" {
		detail, err = e.deps.Runtime.Inspect(rctx, name)
	}
	switch {
	case name == "":
		rows = append(rows, noItemsRow())
	case err != nil:
		sess.SetMessage(LevelError, "Service information unavailable: "+err.Error())
		rows = append(rows, noItemsRow())
	case detail == nil:
		sess.SetMessage(LevelWarning, fmt.Sprintf("Service %s not found.", name))
		rows = append(rows, noItemsRow())
	default:
		lines := []struct{ label, value string }{
			{"Service", detail.Name},
			{"Image", detail.Image},
			{"Status", detail.State},
			{"Health", orDash(detail.Health)},
			{"Restarts", fmt.Sprintf("%d", detail.RestartCnt)},
			{"Exit code", fmt.Sprintf("%d", detail.ExitCode)},
			{"Started", formatTime(detail.StartedAt)},
			{"Created", formatTime(detail.Created)},
			{"Ports", orDash(strings.Join(detail.Ports, ", "))},
			{"Mounts", orDash(truncate(strings.Join(detail.Mounts, ", "), 48))},
		}
		for _, l := range lines {
			rows = append(rows, Row{styled("label", "  "+pad(l.label+" ", 14)+": "), text(l.value)})
		}
	}

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func svcLogScreen() *ScreenDef {
	return &ScreenDef{
		Name:     "svclog",
		Title:    "Display Service Log",
		Render:   renderSvcLog,
		Parent:   "wrksvc",
		Wide:     true,
		PageSize: 18,
	}
}

func renderSvcLog(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 132
	name := sess.Field("svc")
	rows := titleRows(width, "Display Service Log")
	rows = append(rows, Row{styled("label", "  Service: "+name)}, blankRow())

	var lines []string
	if name != "" {
		rctx, cancel := context.WithTimeout(ctx, runtimeTimeout)
		defer cancel()
		var err error
		lines, err = e.deps.Runtime.Logs(rctx, name, 200)
		if err != nil {
			sess.SetMessage(LevelError, "Service log unavailable: "+err.Error())
			lines = nil
		}
	}

	offset, ind := ClampOffset(sess, "svclog", len(lines), 18)
	lo, hi := pageBounds(offset, 18, len(lines))
	if len(lines) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, line := range lines[lo:hi] {
		rows = append(rows, textRow("  "+truncate(line, width-2)))
	}
	rows = append(rows, indicatorRow(width, ind))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

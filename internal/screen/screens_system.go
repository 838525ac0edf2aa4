package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// System screens: status overview, the history log, system values and
// subsystem descriptions.

func dspsysstsScreen() *ScreenDef {
	return &ScreenDef{
		Name:   "dspsyssts",
		Title:  "Display System Status",
		Render: renderDspsyssts,
		Parent: "main",
	}
}

func renderDspsyssts(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Display System Status")
	rows = append(rows, blankRow())

	model, serial, seclvl := "LAB400", "-", "-"
	if v, err := e.deps.SysValues.Get(ctx, "QMODEL"); err == nil && v != nil {
		model = v.Value
	}
	if v, err := e.deps.SysValues.Get(ctx, "QSRLNBR"); err == nil && v != nil {
		serial = v.Value
	}
	if v, err := e.deps.SysValues.Get(ctx, "QSECURITY"); err == nil && v != nil {
		seclvl = v.Value
	}

	uptime := "-"
	if !e.deps.StartedAt.IsZero() {
		uptime = time.Since(e.deps.StartedAt).Round(time.Second).String()
	}

	activeJobs, pendingJobs := 0, 0
	if jobs, err := e.deps.Broker.Active(); err == nil {
		activeJobs = len(jobs)
	}
	if jobs, err := e.deps.Broker.Pending(); err == nil {
		pendingJobs = len(jobs)
	}

	svcRunning, svcTotal := 0, 0
	rctx, cancel := context.WithTimeout(ctx, runtimeTimeout)
	if services, err := e.deps.Runtime.List(rctx); err == nil {
		svcTotal = len(services)
		for _, s := range services {
			if s.State == "RUNNING" {
				svcRunning++
			}
		}
	}
	cancel()

	for _, l := range []struct{ label, value string }{
		{"System", model},
		{"Serial number", serial},
		{"Security level", seclvl},
		{"Up time", uptime},
		{"Active jobs", strconv.Itoa(activeJobs)},
		{"Jobs on queues", strconv.Itoa(pendingJobs)},
		{"Services running", fmt.Sprintf("%d of %d", svcRunning, svcTotal)},
	} {
		rows = append(rows, Row{styled("label", "  "+pad(l.label+" ", 20)+": "), text(l.value)})
	}

	rows = append(rows, blankRow(), Row{styled("label", "  Queue       Status  Act  Wait  Processed  Failed")})
	queues, err := e.deps.Broker.Queues()
	if err != nil {
		sess.SetMessage(LevelError, "Queue information unavailable: "+err.Error())
	}
	if len(queues) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, q := range queues {
		status := "RLS"
		if q.Paused {
			status = "HLD"
		}
		rows = append(rows, textRow("  "+pad(q.Name, 12)+pad(status, 8)+
			pad(strconv.Itoa(q.Active), 5)+pad(strconv.Itoa(q.Pending), 6)+
			pad(strconv.Itoa(q.Processed), 11)+strconv.Itoa(q.Failed)))
	}

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func dsplogScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "dsplog",
		Title:              "Display Log",
		Render:             renderDsplog,
		Parent:             "main",
		Wide:               true,
		PageSize:           18,
		ResetOffsetOnEnter: true,
	}
}

func renderDsplog(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 132
	rows := titleRows(width, "Display Log")
	rows = append(rows, blankRow(),
		Row{styled("label", "Time                 Type       User        Message")})

	entries, err := e.deps.History.Recent(ctx, 200)
	if err != nil {
		sess.SetMessage(LevelError, "History log unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "dsplog", len(entries), 18)
	lo, hi := pageBounds(offset, 18, len(entries))
	if len(entries) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, h := range entries[lo:hi] {
		rows = append(rows, textRow(
			pad(h.LoggedAt.Format("2006-01-02 15:04:05"), 21)+
				pad(h.Type, 11)+pad(h.Username, 12)+truncate(h.Message, 80)))
	}
	rows = append(rows, indicatorRow(width, ind))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func wrksysvalScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrksysval",
		Title:              "Work with System Values",
		Render:             renderWrksysval,
		Submit:             submitWrksysval,
		Parent:             "main",
		ResetOffsetOnEnter: true,
	}
}

func renderWrksysval(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with System Values")
	rows = append(rows,
		blankRow(),
		textRow("Type option and new value, press Enter."),
		textRow("  2=Change"),
		blankRow(),
		Row{styled("label", "Opt  Name        Value                           Changed by")},
	)

	values, err := e.deps.SysValues.List(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "System values unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrksysval", len(values), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(values))
	if len(values) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, v := range values[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+v.Name, 1, ""),
			text("   " + pad(v.Name, 12)),
			field("val_"+v.Name, 30, v.Value),
			text("  " + v.UpdatedBy),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrksysval(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	values, err := e.deps.SysValues.List(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		sess.ClearFieldPrefix("val_")
		return e.fail(ctx, sess, fmt.Errorf("system values unavailable: %w", err))
	}
	changed := 0
	for _, v := range values {
		if strings.TrimSpace(fields["opt_"+v.Name]) != "2" {
			continue
		}
		if !sess.Class.AtLeast(ClassSecAdm) {
			sess.ClearFieldPrefix("opt_")
			sess.ClearFieldPrefix("val_")
			sess.SetMessage(LevelError, "Not authorized to change system values.")
			return e.Render(ctx, sess)
		}
		newVal := strings.TrimSpace(fields["val_"+v.Name])
		if newVal == "" || newVal == v.Value {
			continue
		}
		if err := e.deps.SysValues.Set(ctx, v.Name, newVal, sess.User); err != nil {
			sess.ClearFieldPrefix("opt_")
			sess.ClearFieldPrefix("val_")
			return e.fail(ctx, sess, fmt.Errorf("change %s: %w", v.Name, err))
		}
		e.logHistory(ctx, sess, "*SYSVAL", fmt.Sprintf("System value %s changed", v.Name))
		changed++
	}
	sess.ClearFieldPrefix("opt_")
	sess.ClearFieldPrefix("val_")
	if changed > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d system value(s) changed.", changed))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func wrksbsdScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrksbsd",
		Title:              "Work with Subsystem Descriptions",
		Render:             renderWrksbsd,
		Submit:             submitWrksbsd,
		Parent:             "main",
		MinClass:           ClassSysOpr,
		ResetOffsetOnEnter: true,
	}
}

func renderWrksbsd(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Subsystem Descriptions")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  1=Start   4=End   5=Display job queues"),
		blankRow(),
		Row{styled("label", "Opt  Subsystem   Status    Max Jobs  Description")},
	)

	subsystems, err := e.deps.Subsystems.List(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Subsystem information unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrksbsd", len(subsystems), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(subsystems))
	if len(subsystems) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, s := range subsystems[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+s.Name, 1, ""),
			text("   " + pad(s.Name, 12) + pad(s.Status, 10) +
				pad(strconv.Itoa(s.MaxJobs), 10) + truncate(s.Description, 35)),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrksbsd(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	subsystems, err := e.deps.Subsystems.List(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("subsystem information unavailable: %w", err))
	}
	acted := 0
	for _, s := range subsystems {
		switch strings.TrimSpace(fields["opt_"+s.Name]) {
		case "1":
			if err := e.deps.Subsystems.SetStatus(ctx, s.Name, "ACTIVE"); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, err)
			}
			e.logHistory(ctx, sess, "*SBS", fmt.Sprintf("Subsystem %s started", s.Name))
			acted++
		case "4":
			if err := e.deps.Subsystems.SetStatus(ctx, s.Name, "INACTIVE"); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, err)
			}
			e.logHistory(ctx, sess, "*SBS", fmt.Sprintf("Subsystem %s ended", s.Name))
			acted++
		case "5":
			sess.ClearFieldPrefix("opt_")
			var queues []string
			for _, q := range s.Queues {
				queues = append(queues, fmt.Sprintf("%s (seq %d, max %d)", q.JobQueue, q.Sequence, q.MaxActive))
			}
			if len(queues) == 0 {
				return e.note(ctx, sess, fmt.Sprintf("Subsystem %s has no job queue entries.", s.Name))
			}
			return e.note(ctx, sess, fmt.Sprintf("Subsystem %s queues: %s", s.Name, strings.Join(queues, ", ")))
		}
	}
	sess.ClearFieldPrefix("opt_")
	if acted > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d subsystem(s) changed.", acted))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

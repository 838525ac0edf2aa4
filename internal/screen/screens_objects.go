package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oplab/lab400/internal/database/repository"
)

// Object screens over the datastore: message queues, spooled files and
// job schedule entries.

func wrkmsgqScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkmsgq",
		Title:              "Work with Message Queues",
		Render:             renderWrkmsgq,
		Submit:             submitWrkmsgq,
		Parent:             "main",
		ResetOffsetOnEnter: true,
	}
}

func renderWrkmsgq(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Message Queues")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  5=Display messages   14=Clear"),
		blankRow(),
		Row{styled("label", "Opt  Queue       Library     Description")},
	)

	queues, err := e.deps.Messages.ListQueues(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Message queues unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkmsgq", len(queues), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(queues))
	if len(queues) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, q := range queues[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+q.Library+"_"+q.Name, 1, ""),
			text("   " + pad(q.Name, 12) + pad(q.Library, 12) + truncate(q.Description, 40)),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkmsgq(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	queues, err := e.deps.Messages.ListQueues(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("message queues unavailable: %w", err))
	}
	for _, q := range queues {
		switch strings.TrimSpace(fields["opt_"+q.Library+"_"+q.Name]) {
		case "5":
			sess.ClearFieldPrefix("opt_")
			sess.FieldValues["msgq"] = q.Name
			sess.FieldValues["msgqlib"] = q.Library
			sess.ResetOffset("dspmsg")
			return e.Get(ctx, sess, "dspmsg")
		case "14":
			if err := e.deps.Messages.ClearQueue(ctx, q.Name, q.Library); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, fmt.Errorf("clear queue %s: %w", q.Name, err))
			}
			sess.ClearFieldPrefix("opt_")
			return e.note(ctx, sess, fmt.Sprintf("Queue %s cleared.", q.Name))
		}
	}
	sess.ClearFieldPrefix("opt_")
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func dspmsgScreen() *ScreenDef {
	return &ScreenDef{
		Name:     "dspmsg",
		Title:    "Display Messages",
		Render:   renderDspmsg,
		Submit:   submitDspmsg,
		Parent:   "wrkmsgq",
		Wide:     true,
		PageSize: 16,
	}
}

func renderDspmsg(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 132
	queue := sess.Field("msgq")
	library := sess.Field("msgqlib")
	rows := titleRows(width, "Display Messages")
	rows = append(rows,
		Row{styled("label", fmt.Sprintf("  Queue: %s/%s", library, queue))},
		blankRow(),
		Row{styled("label", "Sent                 Sev  Status      From        Message")},
	)

	var messages []repository.Message
	if queue != "" {
		var err error
		messages, err = e.deps.Messages.Messages(ctx, queue, library, 200)
		if err != nil {
			sess.SetMessage(LevelError, "Messages unavailable: "+err.Error())
		}
	}
	offset, ind := ClampOffset(sess, "dspmsg", len(messages), 16)
	lo, hi := pageBounds(offset, 16, len(messages))
	if len(messages) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, m := range messages[lo:hi] {
		rows = append(rows, textRow(
			pad(m.SentAt.Format("2006-01-02 15:04:05"), 21)+
				pad(strconv.Itoa(m.Severity), 5)+pad(m.Status, 12)+
				pad(m.Sender, 12)+truncate(m.Text, 70)))
	}
	rows = append(rows,
		indicatorRow(width, ind),
		blankRow(),
		Row{styled("label", "  Send message . . . "), field("sndmsg", 60, "")},
	)

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitDspmsg(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	queue := sess.Field("msgq")
	library := sess.Field("msgqlib")
	if text := strings.TrimSpace(fields["sndmsg"]); text != "" && queue != "" {
		err := e.deps.Messages.Send(ctx, repository.Message{
			Queue:   queue,
			Library: library,
			Text:    text,
			Sender:  sess.User,
		})
		sess.ClearFields("sndmsg")
		if err != nil {
			return e.fail(ctx, sess, fmt.Errorf("send message: %w", err))
		}
		return e.note(ctx, sess, "Message sent.")
	}
	sess.ClearFields("sndmsg")
	return e.Render(ctx, sess)
}

func wrksplfScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrksplf",
		Title:              "Work with Spooled Files",
		Render:             renderWrksplf,
		Submit:             submitWrksplf,
		Parent:             "main",
		ResetOffsetOnEnter: true,
	}
}

// spooledFiles scopes the list to the session user unless the user has
// operator authority or better.
func (e *Engine) spooledFiles(ctx context.Context, sess *Session) []repository.SpooledFile {
	scope := sess.User
	if sess.Class.AtLeast(ClassSysOpr) {
		scope = ""
	}
	files, err := e.deps.Spool.ListSpooledFiles(ctx, scope)
	if err != nil {
		sess.SetMessage(LevelError, "Spooled files unavailable: "+err.Error())
		return nil
	}
	return files
}

func renderWrksplf(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Spooled Files")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  3=Hold   4=Delete   6=Release"),
		blankRow(),
		Row{styled("label", "Opt  File        User        Queue       Status  Pages")},
	)

	files := e.spooledFiles(ctx, sess)
	offset, ind := ClampOffset(sess, "wrksplf", len(files), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(files))
	if len(files) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, f := range files[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field(fmt.Sprintf("opt_%d", f.ID), 1, ""),
			text("   " + pad(f.Name, 12) + pad(f.Username, 12) +
				pad(f.OutputQueue, 12) + pad(f.Status, 8) + strconv.Itoa(f.Pages)),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrksplf(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	files := e.spooledFiles(ctx, sess)
	acted := 0
	for _, f := range files {
		var err error
		switch strings.TrimSpace(fields[fmt.Sprintf("opt_%d", f.ID)]) {
		case "3":
			err = e.deps.Spool.SetSpooledFileStatus(ctx, f.ID, "HLD")
		case "4":
			err = e.deps.Spool.DeleteSpooledFile(ctx, f.ID)
		case "6":
			err = e.deps.Spool.SetSpooledFileStatus(ctx, f.ID, "RDY")
		default:
			continue
		}
		if err != nil {
			sess.ClearFieldPrefix("opt_")
			return e.fail(ctx, sess, err)
		}
		acted++
	}
	sess.ClearFieldPrefix("opt_")
	if acted > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d spooled file(s) changed.", acted))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func wrkjobscdeScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkjobscde",
		Title:              "Work with Job Schedule Entries",
		Render:             renderWrkjobscde,
		Submit:             submitWrkjobscde,
		Parent:             "main",
		MinClass:           ClassSysOpr,
		PageSize:           10,
		ResetOffsetOnEnter: true,
	}
}

func renderWrkjobscde(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Job Schedule Entries")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  3=Hold   4=Remove   6=Release"),
		blankRow(),
		Row{styled("label", "Opt  Entry       Status  Schedule         Command")},
	)

	entries, err := e.deps.Schedule.List(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Job schedule unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkjobscde", len(entries), 10)
	lo, hi := pageBounds(offset, 10, len(entries))
	if len(entries) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, s := range entries[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+s.Name, 1, ""),
			text("   " + pad(s.Name, 12) + pad(s.Status, 8) +
				pad(truncate(s.Schedule, 15), 17) + truncate(s.Command, 28)),
		})
	}
	rows = append(rows,
		indicatorRow(width, ind),
		blankRow(),
		textRow("Add entry:"),
		Row{
			styled("label", "  Name "), field("scde_name", 10, sess.Field("scde_name")),
			styled("label", "  Command "), field("scde_cmd", 20, sess.Field("scde_cmd")),
			styled("label", "  Schedule "), field("scde_sched", 15, sess.Field("scde_sched")),
		},
		blankRow(),
		commandRow(sess),
	)

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkjobscde(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	if name := sess.Field("scde_name"); name != "" {
		cmd := sess.Field("scde_cmd")
		sched := sess.Field("scde_sched")
		if cmd == "" || sched == "" {
			sess.SetMessage(LevelError, "Name, command and schedule are all required to add an entry.")
			return e.Render(ctx, sess)
		}
		err := e.deps.Schedule.Add(ctx, repository.ScheduleEntry{
			Name:     name,
			Command:  cmd,
			Schedule: sched,
		})
		if err != nil {
			return e.fail(ctx, sess, fmt.Errorf("add schedule entry: %w", err))
		}
		sess.ClearFields("scde_name", "scde_cmd", "scde_sched")
		e.logHistory(ctx, sess, "*SCDE", fmt.Sprintf("Schedule entry %s added", strings.ToUpper(name)))
		return e.note(ctx, sess, fmt.Sprintf("Entry %s added.", strings.ToUpper(name)))
	}

	entries, err := e.deps.Schedule.List(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("job schedule unavailable: %w", err))
	}
	acted := 0
	for _, s := range entries {
		var err error
		switch strings.TrimSpace(fields["opt_"+s.Name]) {
		case "3":
			err = e.deps.Schedule.SetStatus(ctx, s.Name, "*HLD")
		case "4":
			err = e.deps.Schedule.Remove(ctx, s.Name)
		case "6":
			err = e.deps.Schedule.SetStatus(ctx, s.Name, "*SCD")
		default:
			continue
		}
		if err != nil {
			sess.ClearFieldPrefix("opt_")
			return e.fail(ctx, sess, err)
		}
		acted++
	}
	sess.ClearFieldPrefix("opt_")
	if acted > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d entr(ies) changed.", acted))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

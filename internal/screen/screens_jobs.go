package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oplab/lab400/internal/broker"
)

// Job screens: the active-job list, the per-job detail, the job queue
// list and the submit-job entry panel, all over the task broker.

func wrkactjobScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkactjob",
		Title:              "Work with Active Jobs",
		Render:             renderWrkactjob,
		Submit:             submitWrkactjob,
		Parent:             "main",
		Wide:               true,
		ResetOffsetOnEnter: true,
		Keys: map[string]KeyFunc{
			"F6": func(ctx context.Context, e *Engine, sess *Session) RenderResult {
				return e.Get(ctx, sess, "sbmjob")
			},
		},
	}
}

// activeJobs returns active plus queued tasks, active first. Broker
// outages render as an empty list with an error message.
func (e *Engine) activeJobs(ctx context.Context, sess *Session) []broker.JobInfo {
	active, err := e.deps.Broker.Active()
	if err != nil {
		sess.SetMessage(LevelError, "Job information unavailable: "+err.Error())
		return nil
	}
	pending, err := e.deps.Broker.Pending()
	if err != nil {
		sess.SetMessage(LevelError, "Job information unavailable: "+err.Error())
		return active
	}
	return append(active, pending...)
}

func renderWrkactjob(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 132
	jobs := e.activeJobs(ctx, sess)

	rows := titleRows(width, "Work with Active Jobs")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  4=End job   5=Display details"),
		blankRow(),
		Row{styled("label", "Opt  Job                                   Type                  Queue     Status      Retries  Next Run")},
	)

	offset, ind := ClampOffset(sess, "wrkactjob", len(jobs), wrkactjobPageSize)
	lo, hi := pageBounds(offset, wrkactjobPageSize, len(jobs))
	if len(jobs) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, j := range jobs[lo:hi] {
		next := ""
		if !j.NextProcessAt.IsZero() && j.NextProcessAt.After(time.Now()) {
			next = j.NextProcessAt.Format("15:04:05")
		}
		rows = append(rows, Row{
			text(" "),
			field("opt_"+j.ID, 1, ""),
			text("   " + pad(j.ID, 38) + pad(truncate(j.Type, 20), 22) +
				pad(j.Queue, 10) + pad(j.State, 12) +
				pad(fmt.Sprintf("%d/%d", j.Retried, j.MaxRetry), 9) + next),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F6", "Submit job"}, {"F12", "Cancel"}},
	}
}

const wrkactjobPageSize = defaultPageSize

func submitWrkactjob(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	jobs := e.activeJobs(ctx, sess)
	ended := 0
	for _, j := range jobs {
		switch strings.TrimSpace(fields["opt_"+j.ID]) {
		case "4":
			if err := e.deps.Broker.End(j.Queue, j.ID); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, fmt.Errorf("end job %s: %w", j.ID, err))
			}
			e.logHistory(ctx, sess, "*JOBEND", fmt.Sprintf("Job %s ended", j.ID))
			ended++
		case "5":
			sess.ClearFieldPrefix("opt_")
			sess.FieldValues["job_id"] = j.ID
			sess.FieldValues["job_queue"] = j.Queue
			return e.Get(ctx, sess, "jobdetail")
		}
	}
	sess.ClearFieldPrefix("opt_")
	if ended > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d job(s) ended.", ended))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func jobDetailScreen() *ScreenDef {
	return &ScreenDef{
		Name:   "jobdetail",
		Title:  "Display Job Details",
		Render: renderJobDetail,
		Parent: "wrkactjob",
	}
}

func renderJobDetail(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Display Job Details")
	rows = append(rows, blankRow())

	id := sess.Field("job_id")
	queue := sess.Field("job_queue")
	job, err := e.deps.Broker.Job(queue, id)
	switch {
	case id == "":
		rows = append(rows, noItemsRow())
	case err != nil:
		sess.SetMessage(LevelError, "Job information unavailable: "+err.Error())
		rows = append(rows, noItemsRow())
	case job == nil:
		sess.SetMessage(LevelWarning, fmt.Sprintf("Job %s is no longer on the system.", id))
		rows = append(rows, noItemsRow())
	default:
		detail := []struct{ label, value string }{
			{"Job", job.ID},
			{"Type", job.Type},
			{"Queue", job.Queue},
			{"Status", job.State},
			{"Retries", fmt.Sprintf("%d of %d", job.Retried, job.MaxRetry)},
			{"Payload", truncate(job.Payload, 50)},
		}
		if job.LastErr != "" {
			detail = append(detail, struct{ label, value string }{"Last error", truncate(job.LastErr, 50)})
		}
		if !job.NextProcessAt.IsZero() {
			detail = append(detail, struct{ label, value string }{"Next run", job.NextProcessAt.Format("2006-01-02 15:04:05")})
		}
		if !job.CompletedAt.IsZero() {
			detail = append(detail, struct{ label, value string }{"Completed", job.CompletedAt.Format("2006-01-02 15:04:05")})
		}
		if job.Result != "" {
			detail = append(detail, struct{ label, value string }{"Result", truncate(job.Result, 50)})
		}
		for _, d := range detail {
			rows = append(rows, Row{styled("label", "  "+pad(d.label+" ", 22)+": "), text(d.value)})
		}
	}

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func wrkjobqScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkjobq",
		Title:              "Work with Job Queues",
		Render:             renderWrkjobq,
		Submit:             submitWrkjobq,
		Parent:             "main",
		ResetOffsetOnEnter: true,
	}
}

func renderWrkjobq(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Job Queues")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  3=Hold   6=Release"),
		blankRow(),
		Row{styled("label", "Opt  Queue       Status  Act  Wait  Sched  Retry")},
	)

	queues, err := e.deps.Broker.Queues()
	if err != nil {
		sess.SetMessage(LevelError, "Queue information unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkjobq", len(queues), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(queues))
	if len(queues) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, q := range queues[lo:hi] {
		status := "RLS"
		if q.Paused {
			status = "HLD"
		}
		rows = append(rows, Row{
			text(" "),
			field("opt_"+q.Name, 1, ""),
			text("   " + pad(q.Name, 12) + pad(status, 8) +
				pad(strconv.Itoa(q.Active), 5) + pad(strconv.Itoa(q.Pending), 6) +
				pad(strconv.Itoa(q.Scheduled), 7) + strconv.Itoa(q.Retry)),
		})
	}
	rows = append(rows, indicatorRow(width, ind), blankRow(), commandRow(sess))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkjobq(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	queues, err := e.deps.Broker.Queues()
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("queue information unavailable: %w", err))
	}
	changed := 0
	for _, q := range queues {
		switch strings.TrimSpace(fields["opt_"+q.Name]) {
		case "3":
			if err := e.deps.Broker.HoldQueue(q.Name); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, fmt.Errorf("hold queue %s: %w", q.Name, err))
			}
			changed++
		case "6":
			if err := e.deps.Broker.ReleaseQueue(q.Name); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, fmt.Errorf("release queue %s: %w", q.Name, err))
			}
			changed++
		}
	}
	sess.ClearFieldPrefix("opt_")
	if changed > 0 {
		return e.note(ctx, sess, fmt.Sprintf("%d queue(s) changed.", changed))
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func sbmjobScreen() *ScreenDef {
	return &ScreenDef{
		Name:    "sbmjob",
		Title:   "Submit Job (SBMJOB)",
		Render:  renderSbmjob,
		Submit:  submitSbmjob,
		Parent:  "main",
		Command: "SBMJOB",
		FieldParams: map[string]string{
			"task": "TASK",
			"jobq": "JOBQ",
		},
	}
}

func renderSbmjob(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Submit Job (SBMJOB)")
	rows = append(rows,
		blankRow(),
		textRow("Type choices, press Enter. F4 on a field lists its values."),
		blankRow(),
		Row{styled("label", "  Command to run  . . . . . . "), field("task", 30, fieldValue(sess, "task"))},
		Row{styled("label", "  Job queue . . . . . . . . . "), field("jobq", 10, fieldValue(sess, "jobq")), styled("label", "   Name, QBATCH")},
		Row{styled("label", "  Delay (seconds) . . . . . . "), field("delay", 5, sess.Field("delay")), styled("label", "   0-86400, 0")},
		blankRow(),
	)
	return RenderResult{
		Rows:  rows,
		Focus: "task",
		Keys:  []Key{{"F3", "Exit"}, {"F4", "Prompt"}, {"F12", "Cancel"}},
	}
}

func submitSbmjob(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	task := sess.Field("task")
	if task == "" {
		sess.SetMessage(LevelError, "Command to run is required.")
		return e.Render(ctx, sess)
	}
	queue := sess.Field("jobq")
	if queue == "" {
		queue = "QBATCH"
	}
	var delay time.Duration
	if d := sess.Field("delay"); d != "" {
		secs, err := strconv.Atoi(d)
		if err != nil || secs < 0 || secs > 86400 {
			sess.SetMessage(LevelError, "Delay must be a number of seconds between 0 and 86400.")
			return e.Render(ctx, sess)
		}
		delay = time.Duration(secs) * time.Second
	}

	id, err := e.deps.Broker.Submit(task, map[string]any{"submitted_by": sess.User}, queue, delay)
	if err != nil {
		return e.fail(ctx, sess, fmt.Errorf("submit job: %w", err))
	}
	sess.ClearFields("task", "jobq", "delay")
	e.logHistory(ctx, sess, "*SBMJOB", fmt.Sprintf("Job %s (%s) submitted to %s", id, task, strings.ToUpper(queue)))
	return e.note(ctx, sess, fmt.Sprintf("Job %s submitted to queue %s.", id, strings.ToUpper(queue)))
}

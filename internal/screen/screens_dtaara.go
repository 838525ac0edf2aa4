package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oplab/lab400/internal/database/repository"
)

// Object configuration screens: data areas, job descriptions and
// authorization lists.

func wrkdtaaraScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkdtaara",
		Title:              "Work with Data Areas",
		Render:             renderWrkdtaara,
		Submit:             submitWrkdtaara,
		Parent:             "main",
		ResetOffsetOnEnter: true,
	}
}

func renderWrkdtaara(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Data Areas")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  2=Change   4=Delete   5=Display"),
		blankRow(),
		Row{styled("label", "Opt  Data Area   Library     Type    Value")},
	)

	areas, err := e.deps.Objects.ListDataAreas(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Data areas unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkdtaara", len(areas), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(areas))
	if len(areas) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, d := range areas[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+d.Library+"_"+d.Name, 1, ""),
			text("   " + pad(d.Name, 12) + pad(d.Library, 12) + pad(d.DataType, 8) +
				truncate(d.Value, 40)),
		})
	}
	rows = append(rows,
		indicatorRow(width, ind),
		blankRow(),
		textRow("Create data area:"),
		Row{
			styled("label", "  Name "), field("dtaara_name", 10, sess.Field("dtaara_name")),
			styled("label", "  Value "), field("dtaara_value", 32, sess.Field("dtaara_value")),
			styled("label", "  Text "), field("dtaara_text", 20, sess.Field("dtaara_text")),
		},
		blankRow(),
		commandRow(sess),
	)

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkdtaara(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	if name := sess.Field("dtaara_name"); name != "" {
		err := e.deps.Objects.CreateDataArea(ctx, repository.DataArea{
			Name:        name,
			Value:       sess.Field("dtaara_value"),
			Description: sess.Field("dtaara_text"),
		})
		if err != nil {
			return e.fail(ctx, sess, fmt.Errorf("create data area: %w", err))
		}
		sess.ClearFields("dtaara_name", "dtaara_value", "dtaara_text")
		e.logHistory(ctx, sess, "*DTAARA", fmt.Sprintf("Data area %s created", strings.ToUpper(name)))
		return e.note(ctx, sess, fmt.Sprintf("Data area %s created.", strings.ToUpper(name)))
	}

	areas, err := e.deps.Objects.ListDataAreas(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("data areas unavailable: %w", err))
	}
	for _, d := range areas {
		switch strings.TrimSpace(fields["opt_"+d.Library+"_"+d.Name]) {
		case "2":
			sess.ClearFieldPrefix("opt_")
			sess.FieldValues["chg_dtaara"] = d.Library + "/" + d.Name
			return e.note(ctx, sess,
				fmt.Sprintf("Type the new value for %s on the create line, then press Enter.", d.Name))
		case "4":
			if err := e.deps.Objects.DeleteDataArea(ctx, d.Name, d.Library); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, err)
			}
			sess.ClearFieldPrefix("opt_")
			return e.note(ctx, sess, fmt.Sprintf("Data area %s deleted.", d.Name))
		case "5":
			sess.ClearFieldPrefix("opt_")
			return e.note(ctx, sess,
				fmt.Sprintf("%s/%s %s(%d): '%s'", d.Library, d.Name, d.DataType, d.Length, d.Value))
		}
	}
	sess.ClearFieldPrefix("opt_")

	// A pending option 2 uses the create-line value field as input.
	if target := sess.Field("chg_dtaara"); target != "" {
		lib, name, _ := strings.Cut(target, "/")
		value := strings.TrimSpace(fields["dtaara_value"])
		sess.ClearFields("chg_dtaara", "dtaara_value")
		if err := e.deps.Objects.ChangeDataArea(ctx, name, lib, value); err != nil {
			return e.fail(ctx, sess, err)
		}
		return e.note(ctx, sess, fmt.Sprintf("Data area %s changed.", name))
	}

	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func wrkjobdScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkjobd",
		Title:              "Work with Job Descriptions",
		Render:             renderWrkjobd,
		Submit:             submitWrkjobd,
		Parent:             "main",
		MinClass:           ClassSysOpr,
		ResetOffsetOnEnter: true,
	}
}

func renderWrkjobd(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Job Descriptions")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  4=Delete"),
		blankRow(),
		Row{styled("label", "Opt  Job Desc    Library     Queue       Pri  Description")},
	)

	descs, err := e.deps.Objects.ListJobDescriptions(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Job descriptions unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkjobd", len(descs), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(descs))
	if len(descs) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, jd := range descs[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+jd.Library+"_"+jd.Name, 1, ""),
			text("   " + pad(jd.Name, 12) + pad(jd.Library, 12) + pad(jd.JobQueue, 12) +
				pad(strconv.Itoa(jd.Priority), 5) + truncate(jd.Description, 24)),
		})
	}
	rows = append(rows,
		indicatorRow(width, ind),
		blankRow(),
		textRow("Create job description:"),
		Row{
			styled("label", "  Name "), field("jobd_name", 10, sess.Field("jobd_name")),
			styled("label", "  Queue "), field("jobd_jobq", 10, sess.Field("jobd_jobq")),
			styled("label", "  Priority "), field("jobd_pri", 2, sess.Field("jobd_pri")),
		},
		blankRow(),
		commandRow(sess),
	)

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkjobd(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	if name := sess.Field("jobd_name"); name != "" {
		priority := 5
		if p := strings.TrimSpace(sess.Field("jobd_pri")); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > 9 {
				sess.SetMessage(LevelError, "Priority must be between 1 and 9.")
				return e.Render(ctx, sess)
			}
			priority = n
		}
		err := e.deps.Objects.CreateJobDescription(ctx, repository.JobDescription{
			Name:     name,
			JobQueue: strings.ToUpper(sess.Field("jobd_jobq")),
			Priority: priority,
		})
		if err != nil {
			return e.fail(ctx, sess, fmt.Errorf("create job description: %w", err))
		}
		sess.ClearFields("jobd_name", "jobd_jobq", "jobd_pri")
		return e.note(ctx, sess, fmt.Sprintf("Job description %s created.", strings.ToUpper(name)))
	}

	descs, err := e.deps.Objects.ListJobDescriptions(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("job descriptions unavailable: %w", err))
	}
	for _, jd := range descs {
		if strings.TrimSpace(fields["opt_"+jd.Library+"_"+jd.Name]) == "4" {
			if err := e.deps.Objects.DeleteJobDescription(ctx, jd.Name, jd.Library); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, err)
			}
			sess.ClearFieldPrefix("opt_")
			return e.note(ctx, sess, fmt.Sprintf("Job description %s deleted.", jd.Name))
		}
	}
	sess.ClearFieldPrefix("opt_")
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

func wrkautlScreen() *ScreenDef {
	return &ScreenDef{
		Name:               "wrkautl",
		Title:              "Work with Authorization Lists",
		Render:             renderWrkautl,
		Submit:             submitWrkautl,
		Parent:             "main",
		MinClass:           ClassSecAdm,
		ResetOffsetOnEnter: true,
	}
}

func renderWrkautl(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Work with Authorization Lists")
	rows = append(rows,
		blankRow(),
		textRow("Type options, press Enter."),
		textRow("  4=Delete   5=Display entries"),
		blankRow(),
		Row{styled("label", "Opt  List        Description")},
	)

	lists, err := e.deps.AuthLists.List(ctx)
	if err != nil {
		sess.SetMessage(LevelError, "Authorization lists unavailable: "+err.Error())
	}
	offset, ind := ClampOffset(sess, "wrkautl", len(lists), defaultPageSize)
	lo, hi := pageBounds(offset, defaultPageSize, len(lists))
	if len(lists) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, l := range lists[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+l.Name, 1, ""),
			text("   " + pad(l.Name, 12) + truncate(l.Description, 50)),
		})
	}
	rows = append(rows,
		indicatorRow(width, ind),
		blankRow(),
		textRow("Create list:"),
		Row{
			styled("label", "  Name "), field("autl_name", 10, sess.Field("autl_name")),
			styled("label", "  Text "), field("autl_text", 40, sess.Field("autl_text")),
		},
		blankRow(),
		commandRow(sess),
	)

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func submitWrkautl(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	if name := sess.Field("autl_name"); name != "" {
		err := e.deps.AuthLists.Create(ctx, repository.AuthorizationList{
			Name:        name,
			Description: sess.Field("autl_text"),
		})
		if err != nil {
			return e.fail(ctx, sess, fmt.Errorf("create authorization list: %w", err))
		}
		sess.ClearFields("autl_name", "autl_text")
		e.logHistory(ctx, sess, "*AUTL", fmt.Sprintf("Authorization list %s created", strings.ToUpper(name)))
		return e.note(ctx, sess, fmt.Sprintf("List %s created.", strings.ToUpper(name)))
	}

	lists, err := e.deps.AuthLists.List(ctx)
	if err != nil {
		sess.ClearFieldPrefix("opt_")
		return e.fail(ctx, sess, fmt.Errorf("authorization lists unavailable: %w", err))
	}
	for _, l := range lists {
		switch strings.TrimSpace(fields["opt_"+l.Name]) {
		case "4":
			if err := e.deps.AuthLists.Delete(ctx, l.Name); err != nil {
				sess.ClearFieldPrefix("opt_")
				return e.fail(ctx, sess, err)
			}
			sess.ClearFieldPrefix("opt_")
			return e.note(ctx, sess, fmt.Sprintf("List %s deleted.", l.Name))
		case "5":
			sess.ClearFieldPrefix("opt_")
			entries, err := e.deps.AuthLists.Entries(ctx, l.Name)
			if err != nil {
				return e.fail(ctx, sess, err)
			}
			if len(entries) == 0 {
				return e.note(ctx, sess, fmt.Sprintf("List %s has no entries.", l.Name))
			}
			parts := make([]string, 0, len(entries))
			for _, entry := range entries {
				parts = append(parts, entry.Username+"="+entry.Authority)
			}
			return e.note(ctx, sess, fmt.Sprintf("%s: %s", l.Name, strings.Join(parts, "  ")))
		}
	}
	sess.ClearFieldPrefix("opt_")
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

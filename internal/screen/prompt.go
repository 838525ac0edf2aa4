package screen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oplab/lab400/internal/database/repository"
)

// The F4 prompt sub-flow: cmdprompt lists the command table, parmprompt
// lists the valid values of one command parameter. Both run off the
// session's PromptContext and degrade to an empty list when the context
// is missing or stale.

func cmdPromptScreen() *ScreenDef {
	return &ScreenDef{
		Name:     "cmdprompt",
		Title:    "Select Command",
		Render:   renderCmdPrompt,
		Submit:   submitCmdPrompt,
		PageSize: 12,
	}
}

func renderCmdPrompt(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Select Command")

	filter := ""
	if sess.Prompt != nil {
		filter = sess.Prompt.Filter
	}
	rows = append(rows,
		blankRow(),
		Row{styled("label", "Position to . . . . . "), field("filter", 20, filter)},
		blankRow(),
		textRow("Type option, press Enter."),
		textRow("  1=Select"),
		blankRow(),
		Row{styled("label", "Opt  Command     Description")},
	)

	entries := e.promptCommands(ctx, sess)
	offset, ind := ClampOffset(sess, "cmdprompt", len(entries), 12)
	lo, hi := pageBounds(offset, 12, len(entries))
	if len(entries) == 0 {
		rows = append(rows, noItemsRow())
	}
	for _, c := range entries[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field("opt_"+c.Name, 1, ""),
			text("   " + pad(c.Name, 12) + truncate(c.Description, 50)),
		})
	}
	rows = append(rows, indicatorRow(width, ind))

	return RenderResult{
		Rows:  rows,
		Focus: "filter",
		Keys:  []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

// promptCommands returns the command table filtered by the stored
// prompt filter. No context means no list; the screen never errors.
func (e *Engine) promptCommands(ctx context.Context, sess *Session) []repository.CommandEntry {
	if sess.Prompt == nil {
		return nil
	}
	entries, err := e.deps.Commands.List(ctx, sess.Prompt.Filter)
	if err != nil {
		return nil
	}
	return entries
}

func submitCmdPrompt(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	if sess.Prompt == nil {
		return e.Render(ctx, sess)
	}
	if filter := strings.ToUpper(sess.Field("filter")); filter != sess.Prompt.Filter {
		sess.Prompt.Filter = filter
		sess.ResetOffset("cmdprompt")
	}

	entries := e.promptCommands(ctx, sess)
	for _, c := range entries {
		if strings.TrimSpace(fields["opt_"+c.Name]) != "1" {
			continue
		}
		sess.ClearFieldPrefix("opt_")
		sess.ClearFields("filter")
		sess.Prompt = nil
		return e.ResolveCommand(ctx, sess, c.Name)
	}
	sess.ClearFieldPrefix("opt_")
	return e.Render(ctx, sess)
}

func parmPromptScreen() *ScreenDef {
	return &ScreenDef{
		Name:     "parmprompt",
		Title:    "Select Parameter Value",
		Render:   renderParmPrompt,
		Submit:   submitParmPrompt,
		PageSize: 12,
	}
}

func renderParmPrompt(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "Select Parameter Value")

	heading := ""
	if p := sess.Prompt; p != nil && p.Command != "" {
		heading = fmt.Sprintf("Command %s, parameter %s", p.Command, p.Parm)
	}
	rows = append(rows,
		blankRow(),
		Row{styled("label", heading)},
		blankRow(),
		textRow("Type option, press Enter."),
		textRow("  1=Select"),
		blankRow(),
		Row{styled("label", "Opt  Value         Description")},
	)

	values := e.promptValues(ctx, sess)
	offset, ind := ClampOffset(sess, "parmprompt", len(values), 12)
	lo, hi := pageBounds(offset, 12, len(values))
	if len(values) == 0 {
		rows = append(rows, noItemsRow())
	}
	for i, v := range values[lo:hi] {
		rows = append(rows, Row{
			text(" "),
			field(fmt.Sprintf("val_%d", lo+i), 1, ""),
			text("   " + pad(v.Value, 14) + truncate(v.Description, 50)),
		})
	}
	rows = append(rows, indicatorRow(width, ind))

	return RenderResult{
		Rows: rows,
		Keys: []Key{{"F3", "Exit"}, {"F5", "Refresh"}, {"F12", "Cancel"}},
	}
}

func (e *Engine) promptValues(ctx context.Context, sess *Session) []repository.ValidValue {
	p := sess.Prompt
	if p == nil || p.Command == "" || p.Parm == "" {
		return nil
	}
	values, err := e.deps.Commands.ValidValues(ctx, p.Command, p.Parm)
	if err != nil {
		return nil
	}
	return values
}

func submitParmPrompt(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult {
	p := sess.Prompt
	if p == nil {
		return e.Render(ctx, sess)
	}
	values := e.promptValues(ctx, sess)

	var picked []int
	for k, v := range fields {
		if !strings.HasPrefix(k, "val_") || strings.TrimSpace(v) != "1" {
			continue
		}
		var i int
		if _, err := fmt.Sscanf(k, "val_%d", &i); err == nil && i >= 0 && i < len(values) {
			picked = append(picked, i)
		}
	}
	sess.ClearFieldPrefix("val_")
	if len(picked) == 0 {
		return e.Render(ctx, sess)
	}
	sort.Ints(picked)

	value := values[picked[0]].Value
	if p.FieldID != "" {
		sess.Selected[p.FieldID] = value
		sess.FieldValues[p.FieldID] = value
	}
	target := p.Return
	if target == "" {
		target = "main"
	}
	sess.Prompt = nil
	sess.ResetOffset("parmprompt")
	return e.Get(ctx, sess, target)
}

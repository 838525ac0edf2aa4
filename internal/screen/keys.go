package screen

import (
	"context"
	"strings"
)

// HandleFunctionKey routes a function key press. Submitted fields are
// merged first so half-typed input survives the key. The focused field
// ID, when the client sends one, steers F4. Undefined keys are a no-op
// re-render.
func (e *Engine) HandleFunctionKey(ctx context.Context, sess *Session, key, focused string, fields map[string]string) RenderResult {
	sess.MergeFields(fields)
	def := e.def(sess.CurrentScreen)
	key = strings.ToUpper(strings.TrimSpace(key))

	switch key {
	case "F3":
		return e.exit(ctx, sess)
	case "F4":
		return e.openPrompt(ctx, sess, focused)
	case "F5":
		return e.Render(ctx, sess)
	case "F12":
		return e.cancel(ctx, sess, def)
	case "F6", "F7":
		if fn := def.Keys[key]; fn != nil {
			return fn(ctx, e, sess)
		}
		return e.Render(ctx, sess)
	case "PAGEDOWN", "ROLLUP":
		sess.SetOffset(def.Name, sess.Offset(def.Name)+def.PageSize)
		return e.Render(ctx, sess)
	case "PAGEUP", "ROLLDOWN":
		sess.SetOffset(def.Name, sess.Offset(def.Name)-def.PageSize)
		return e.Render(ctx, sess)
	default:
		return e.Render(ctx, sess)
	}
}

// exit is F3. On the sign-on screen it ends the session outright; on
// the main menu it stays put; everywhere else it returns to main.
func (e *Engine) exit(ctx context.Context, sess *Session) RenderResult {
	switch sess.CurrentScreen {
	case "signon":
		res := e.Render(ctx, sess)
		res.Terminated = true
		return res
	case "main":
		return e.Render(ctx, sess)
	default:
		return e.Get(ctx, sess, "main")
	}
}

// cancel is F12. Prompt screens return to their invoking screen and
// drop the prompt context; other screens follow the static parent map;
// screens without a parent re-render in place.
func (e *Engine) cancel(ctx context.Context, sess *Session, def *ScreenDef) RenderResult {
	if def.Name == "cmdprompt" || def.Name == "parmprompt" {
		target := "main"
		if sess.Prompt != nil && sess.Prompt.Return != "" {
			target = sess.Prompt.Return
		}
		sess.Prompt = nil
		return e.Get(ctx, sess, target)
	}
	if def.Parent != "" {
		return e.Get(ctx, sess, def.Parent)
	}
	return e.Render(ctx, sess)
}

// openPrompt is F4. A focused data-entry field bound to an enumerable
// command parameter opens the parameter-value prompt; anything else,
// including the command line itself, opens the command list filtered by
// whatever was typed there.
func (e *Engine) openPrompt(ctx context.Context, sess *Session, focused string) RenderResult {
	def := e.def(sess.CurrentScreen)
	if focused != "" && focused != "cmd" && def.Command != "" {
		if parm, ok := def.FieldParams[focused]; ok {
			values, err := e.deps.Commands.ValidValues(ctx, def.Command, parm)
			if err == nil && len(values) > 0 {
				sess.Prompt = &PromptContext{
					Command: def.Command,
					Parm:    parm,
					FieldID: focused,
					Return:  def.Name,
				}
				sess.ResetOffset("parmprompt")
				return e.Get(ctx, sess, "parmprompt")
			}
		}
	}
	sess.Prompt = &PromptContext{
		Return: def.Name,
		Filter: strings.ToUpper(sess.Field("cmd")),
	}
	sess.ResetOffset("cmdprompt")
	return e.Get(ctx, sess, "cmdprompt")
}

package screen

import (
	"context"
	"strings"
	"time"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/broker"
	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/runtime"
)

// JobBroker is the slice of the task broker the screens drive.
type JobBroker interface {
	Submit(taskType string, payload map[string]any, queue string, delay time.Duration) (string, error)
	Active() ([]broker.JobInfo, error)
	Pending() ([]broker.JobInfo, error)
	Completed() ([]broker.JobInfo, error)
	Job(queue, id string) (*broker.JobInfo, error)
	End(queue, id string) error
	HoldQueue(queue string) error
	ReleaseQueue(queue string) error
	Queues() ([]broker.QueueStats, error)
}

// ServiceRuntime is the slice of the container runtime the screens drive.
type ServiceRuntime interface {
	List(ctx context.Context) ([]runtime.Service, error)
	Inspect(ctx context.Context, nameOrID string) (*runtime.ServiceDetail, error)
	Start(ctx context.Context, nameOrID string) error
	Stop(ctx context.Context, nameOrID string) error
	Restart(ctx context.Context, nameOrID string) error
	Logs(ctx context.Context, nameOrID string, tail int) ([]string, error)
}

// Deps carries every collaborator the screens reach.
type Deps struct {
	Users      *repository.UserRepo
	Commands   *repository.CommandRepo
	Messages   *repository.MessageRepo
	Spool      *repository.SpoolRepo
	Schedule   *repository.ScheduleRepo
	Subsystems *repository.SubsystemRepo
	Objects    *repository.ObjectRepo
	AuthLists  *repository.AuthListRepo
	SysValues  *repository.SystemValueRepo
	History    *repository.HistoryRepo
	Auth       *auth.Authenticator
	Broker     JobBroker
	Runtime    ServiceRuntime
	StartedAt  time.Time
}

// RenderFunc produces the frame for a screen from current session state.
type RenderFunc func(ctx context.Context, e *Engine, sess *Session) RenderResult

// SubmitFunc handles Enter on a screen after fields are merged.
type SubmitFunc func(ctx context.Context, e *Engine, sess *Session, fields map[string]string) RenderResult

// KeyFunc handles a screen-specific function key.
type KeyFunc func(ctx context.Context, e *Engine, sess *Session) RenderResult

// ScreenDef is one registry entry. The registry is built explicitly at
// startup; dispatch is a map lookup, nothing dynamic.
type ScreenDef struct {
	Name     string
	Title    string
	Render   RenderFunc
	Submit   SubmitFunc
	Parent   string // F12 target; empty means F12 re-renders in place
	PageSize int
	MinClass UserClass
	Keys     map[string]KeyFunc // screen-specific F6/F7 actions
	Wide     bool               // 132-column screen

	// Command and FieldParams bind data-entry fields to command
	// parameters so F4 can open the parameter-value prompt.
	Command     string
	FieldParams map[string]string

	// ResetOffsetOnEnter returns the screen to its first page whenever
	// it is navigated to from another screen.
	ResetOffsetOnEnter bool
}

// Engine owns the screen registry and dispatches all session actions.
type Engine struct {
	screens map[string]*ScreenDef
	deps    Deps
}

const defaultPageSize = 14

// NewEngine builds the registry and returns a ready dispatcher.
func NewEngine(deps Deps) *Engine {
	e := &Engine{screens: map[string]*ScreenDef{}, deps: deps}
	for _, def := range []*ScreenDef{
		signonScreen(),
		mainScreen(),
		wrkactjobScreen(),
		jobDetailScreen(),
		wrkjobqScreen(),
		wrksvcScreen(),
		svcDetailScreen(),
		svcLogScreen(),
		dspsysstsScreen(),
		dsplogScreen(),
		sbmjobScreen(),
		cmdPromptScreen(),
		parmPromptScreen(),
		wrkusrprfScreen(),
		crtusrprfScreen(),
		wrkmsgqScreen(),
		dspmsgScreen(),
		wrksplfScreen(),
		wrkjobscdeScreen(),
		wrksbsdScreen(),
		wrksysvalScreen(),
		wrkdtaaraScreen(),
		wrkjobdScreen(),
		wrkautlScreen(),
	} {
		e.register(def)
	}
	return e
}

func (e *Engine) register(def *ScreenDef) {
	if def.PageSize <= 0 {
		def.PageSize = defaultPageSize
	}
	e.screens[def.Name] = def
}

func (e *Engine) def(name string) *ScreenDef {
	if d, ok := e.screens[name]; ok {
		return d
	}
	return e.screens["main"]
}

// Get navigates the session to a screen and renders it. Unregistered
// names fall back to the main menu. Unauthenticated sessions see only
// the sign-on screen. A screen whose MinClass the session does not
// satisfy is never rendered; the session lands on main with an error.
func (e *Engine) Get(ctx context.Context, sess *Session, name string) RenderResult {
	def, ok := e.screens[name]
	if !ok {
		def = e.screens["main"]
	}
	if !sess.Authenticated && def.Name != "signon" {
		def = e.screens["signon"]
	}
	if def.MinClass != "" && !sess.Class.AtLeast(def.MinClass) {
		sess.SetMessage(LevelError, "Not authorized to "+strings.ToUpper(def.Name)+".")
		def = e.screens["main"]
	}
	if def.ResetOffsetOnEnter && sess.CurrentScreen != def.Name {
		sess.ResetOffset(def.Name)
	}
	sess.CurrentScreen = def.Name
	return e.render(ctx, sess, def)
}

// Render re-renders the session's current screen.
func (e *Engine) Render(ctx context.Context, sess *Session) RenderResult {
	return e.render(ctx, sess, e.def(sess.CurrentScreen))
}

func (e *Engine) render(ctx context.Context, sess *Session, def *ScreenDef) RenderResult {
	res := def.Render(ctx, e, sess)
	res.Screen = def.Name
	if res.Title == "" {
		res.Title = def.Title
	}
	if res.Width == 0 {
		res.Width = 80
		if def.Wide {
			res.Width = 132
		}
	}
	if msg, level := sess.TakeMessage(); msg != "" {
		res.Message = msg
		res.MessageLevel = level
	}
	res.User = sess.User
	res.Authenticated = sess.Authenticated
	return res
}

// HandleSubmit is Enter: fields are merged into the session, then the
// screen's submit handler runs. Screens without a handler fall through
// to the command line, then to a plain re-render.
func (e *Engine) HandleSubmit(ctx context.Context, sess *Session, fields map[string]string) RenderResult {
	sess.MergeFields(fields)
	def := e.def(sess.CurrentScreen)
	if def.Submit != nil {
		return def.Submit(ctx, e, sess, fields)
	}
	if cmd := strings.TrimSpace(fields["cmd"]); cmd != "" {
		return e.ResolveCommand(ctx, sess, cmd)
	}
	return e.Render(ctx, sess)
}

// fail converts a collaborator error into a session message and
// re-renders. Collaborator failures never propagate past the engine.
func (e *Engine) fail(ctx context.Context, sess *Session, err error) RenderResult {
	sess.SetMessage(LevelError, err.Error())
	return e.Render(ctx, sess)
}

// note sets an informational message and re-renders.
func (e *Engine) note(ctx context.Context, sess *Session, msg string) RenderResult {
	sess.SetMessage(LevelInfo, msg)
	return e.Render(ctx, sess)
}

// logHistory appends to the history log, best effort.
func (e *Engine) logHistory(ctx context.Context, sess *Session, entryType, msg string) {
	if e.deps.History == nil {
		return
	}
	_ = e.deps.History.Append(ctx, repository.HistoryEntry{
		Type:     entryType,
		Message:  msg,
		Username: sess.User,
	})
}

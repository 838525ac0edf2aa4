package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oplab/lab400/internal/screen"
)

// Action is one inbound client frame.
type Action struct {
	Action  string            `json:"action"` // init, submit, function_key, roll, command, field_update
	Key     string            `json:"key,omitempty"`
	Field   string            `json:"field,omitempty"` // focused field, steers F4
	Fields  map[string]string `json:"fields,omitempty"`
	Command string            `json:"command,omitempty"`
	Dir     string            `json:"dir,omitempty"` // roll direction: up or down
}

// Frame is one outbound frame: the render result tagged with the
// session ID.
type Frame struct {
	Session string `json:"session"`
	screen.RenderResult
}

// Server is the WebSocket transport shell around the screen engine.
// One goroutine per connection; one session per connection; actions on
// a connection are serialized by its read loop.
type Server struct {
	engine   *screen.Engine
	store    *SessionStore
	limiter  *signonLimiter
	timeout  time.Duration
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func New(engine *screen.Engine, store *SessionStore, sessionTimeout time.Duration, signonPerMin, signonBurst int, log *slog.Logger) *Server {
	return &Server{
		engine:  engine,
		store:   store,
		limiter: newSignonLimiter(signonPerMin, signonBurst),
		timeout: sessionTimeout,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP mux: the WebSocket endpoint and a health
// probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	sess := s.store.Create()
	defer s.store.Remove(sess.ID)
	s.log.Info("session opened", "session", sess.ID, "remote", r.RemoteAddr)
	defer s.log.Info("session closed", "session", sess.ID)

	ctx := r.Context()
	for {
		var action Action
		if err := conn.ReadJSON(&action); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read action", "session", sess.ID, "error", err)
			}
			return
		}
		if sess.Touch(s.timeout) {
			res := s.expire(ctx, sess)
			_ = s.send(conn, sess, res)
			return
		}

		res := s.dispatch(ctx, sess, r.RemoteAddr, action)
		if err := s.send(conn, sess, res); err != nil {
			s.log.Warn("write frame", "session", sess.ID, "error", err)
			return
		}
		if res.Terminated {
			return
		}
	}
}

// dispatch routes one action into the engine. Malformed or unknown
// actions re-render the current screen rather than failing the
// connection.
func (s *Server) dispatch(ctx context.Context, sess *screen.Session, remoteAddr string, action Action) screen.RenderResult {
	switch action.Action {
	case "init":
		return s.engine.Get(ctx, sess, sess.CurrentScreen)
	case "submit":
		if sess.CurrentScreen == "signon" && !s.limiter.Allow(remoteAddr) {
			sess.SetMessage(screen.LevelError, "Too many sign-on attempts. Try again later.")
			return s.engine.Render(ctx, sess)
		}
		return s.engine.HandleSubmit(ctx, sess, action.Fields)
	case "function_key":
		return s.engine.HandleFunctionKey(ctx, sess, action.Key, action.Field, action.Fields)
	case "roll":
		key := "PAGEDOWN"
		if strings.EqualFold(action.Dir, "up") {
			key = "PAGEUP"
		}
		return s.engine.HandleFunctionKey(ctx, sess, key, action.Field, action.Fields)
	case "command":
		sess.MergeFields(action.Fields)
		return s.engine.ResolveCommand(ctx, sess, action.Command)
	case "field_update":
		sess.MergeFields(action.Fields)
		return s.engine.Render(ctx, sess)
	default:
		s.log.Debug("unknown action", "session", sess.ID, "action", action.Action)
		return s.engine.Render(ctx, sess)
	}
}

// expire renders the terminal session-expired frame.
func (s *Server) expire(ctx context.Context, sess *screen.Session) screen.RenderResult {
	sess.SignOff()
	sess.SetMessage(screen.LevelError, "Session expired due to inactivity. Sign on again.")
	res := s.engine.Get(ctx, sess, "signon")
	res.Terminated = true
	return res
}

func (s *Server) send(conn *websocket.Conn, sess *screen.Session, res screen.RenderResult) error {
	frame := Frame{Session: sess.ID, RenderResult: res}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

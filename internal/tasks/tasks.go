package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/oplab/lab400/internal/database/repository"
)

// Task type names. SBMJOB submits these through the broker; the worker
// serves them.
const (
	TypePing  = "lab400:ping"
	TypeEcho  = "lab400:echo"
	TypeDelay = "lab400:delay"
	TypeAdd   = "lab400:add"
)

// TaskDef describes one registered task for seeding and prompting.
type TaskDef struct {
	Type        string
	Description string
}

// Registered returns every task type the worker serves, in menu order.
func Registered() []TaskDef {
	return []TaskDef{
		{TypePing, "Connectivity test"},
		{TypeEcho, "Echo a message"},
		{TypeDelay, "Sleep for N seconds"},
		{TypeAdd, "Add two numbers"},
	}
}

// Handlers serves the registered task types. Completed jobs leave their
// output as a spooled file so WRKSPLF can show it.
type Handlers struct {
	spool   *repository.SpoolRepo
	history *repository.HistoryRepo
	log     *slog.Logger
}

func NewHandlers(spool *repository.SpoolRepo, history *repository.HistoryRepo, log *slog.Logger) *Handlers {
	return &Handlers{spool: spool, history: history, log: log}
}

// Register attaches every handler to the mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypePing, h.HandlePing)
	mux.HandleFunc(TypeEcho, h.HandleEcho)
	mux.HandleFunc(TypeDelay, h.HandleDelay)
	mux.HandleFunc(TypeAdd, h.HandleAdd)
}

type payload struct {
	SubmittedBy string  `json:"submitted_by"`
	Message     string  `json:"message"`
	Seconds     int     `json:"seconds"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
}

func decode(t *asynq.Task) (payload, error) {
	var p payload
	if len(t.Payload()) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

func (h *Handlers) HandlePing(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	return h.finish(ctx, t, p, "PONG")
}

func (h *Handlers) HandleEcho(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	return h.finish(ctx, t, p, p.Message)
}

func (h *Handlers) HandleDelay(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	secs := p.Seconds
	if secs <= 0 {
		secs = 1
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(secs) * time.Second):
	}
	return h.finish(ctx, t, p, fmt.Sprintf("Slept %d second(s)", secs))
}

func (h *Handlers) HandleAdd(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	return h.finish(ctx, t, p, fmt.Sprintf("%g + %g = %g", p.A, p.B, p.A+p.B))
}

func (h *Handlers) finish(ctx context.Context, t *asynq.Task, p payload, output string) error {
	id, _ := asynq.GetTaskID(ctx)
	h.log.Info("task completed", "type", t.Type(), "id", id)

	user := p.SubmittedBy
	if user == "" {
		user = "QSYS"
	}
	_, err := h.spool.CreateSpooledFile(ctx, repository.SpooledFile{
		Name:        "QPJOBLOG",
		JobName:     id,
		Username:    user,
		OutputQueue: "QPRINT",
		Content:     fmt.Sprintf("JOB %s (%s)\n%s\n", id, t.Type(), output),
	})
	if err != nil {
		h.log.Error("spool job output", "id", id, "error", err)
	}
	if h.history != nil {
		_ = h.history.Append(ctx, repository.HistoryEntry{
			Type:     "*JOB",
			Message:  fmt.Sprintf("Job %s (%s) completed", id, t.Type()),
			Job:      id,
			Username: user,
		})
	}
	return nil
}

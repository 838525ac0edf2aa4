package fixer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oplab/lab400/internal/database/repository"
	"github.com/oplab/lab400/internal/runtime"
)

// Issue is one detected service problem.
type Issue struct {
	Service   string
	Condition string // e.g. "unhealthy", "exited"
	Detail    string
}

// Fingerprint identifies the issue for notification throttling. Two
// issues with the same service and condition share a fingerprint.
func (i Issue) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.ToLower(i.Service) + "\x00" + strings.ToLower(i.Condition)))
	return hex.EncodeToString(sum[:8])
}

// ContainerRuntime is the slice of the container runtime the fixer
// drives when executing runbook steps.
type ContainerRuntime interface {
	List(ctx context.Context) ([]runtime.Service, error)
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Inspect(ctx context.Context, name string) (*runtime.ServiceDetail, error)
}

// Fixer attempts remediation for service issues: scripted runbook steps
// first, then Claude for advice, then Telegram escalation. Every
// outcome lands in the history log.
type Fixer struct {
	runbooks map[string]Runbook
	runtime  ContainerRuntime
	advisor  *Advisor
	notifier *Notifier
	history  *repository.HistoryRepo
	log      *slog.Logger
}

func New(runbooks map[string]Runbook, rt ContainerRuntime, advisor *Advisor, notifier *Notifier, history *repository.HistoryRepo, log *slog.Logger) *Fixer {
	return &Fixer{
		runbooks: runbooks,
		runtime:  rt,
		advisor:  advisor,
		notifier: notifier,
		history:  history,
		log:      log,
	}
}

// HandleIssue runs the full remediation chain for one issue.
func (f *Fixer) HandleIssue(ctx context.Context, issue Issue) error {
	f.log.Warn("issue detected", "service", issue.Service, "condition", issue.Condition)
	f.record(ctx, issue, fmt.Sprintf("Issue detected on %s: %s", issue.Service, issue.Condition))

	rb, ok := f.runbooks[issue.Service]
	if ok && rb.covers(issue.Condition) && len(rb.Steps) > 0 {
		fixed, err := f.runSteps(ctx, rb, issue)
		if err != nil {
			f.log.Error("runbook failed", "service", issue.Service, "error", err)
		}
		if fixed {
			f.record(ctx, issue, fmt.Sprintf("Runbook remediated %s", issue.Service))
			if rb.Escalate {
				f.escalate(ctx, issue, fmt.Sprintf("Remediated %s (%s) via runbook.", issue.Service, issue.Condition))
			}
			return nil
		}
	}

	advice := "No advisor configured."
	if f.advisor != nil {
		got, err := f.advisor.Advise(ctx, issue)
		if err != nil {
			f.log.Error("advisor failed", "error", err)
			advice = "Advisor unavailable: " + err.Error()
		} else {
			advice = got
		}
	}
	f.escalate(ctx, issue, fmt.Sprintf(
		"Issue on %s (%s): %s\n\nAdvice:\n%s", issue.Service, issue.Condition, issue.Detail, advice))
	return nil
}

// runSteps executes the runbook steps sequentially, then verifies the
// service came back. Steps stop at the first failure.
func (f *Fixer) runSteps(ctx context.Context, rb Runbook, issue Issue) (bool, error) {
	for _, step := range rb.Steps {
		target := step.Target
		if target == "" {
			target = rb.Service
		}
		var err error
		switch strings.ToLower(step.Action) {
		case "restart":
			err = f.runtime.Restart(ctx, target)
		case "start":
			err = f.runtime.Start(ctx, target)
		case "stop":
			err = f.runtime.Stop(ctx, target)
		case "wait":
			secs := step.WaitSeconds
			if secs <= 0 {
				secs = 5
			}
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(time.Duration(secs) * time.Second):
			}
		default:
			return false, fmt.Errorf("runbook %s: unknown action %q", rb.Service, step.Action)
		}
		if err != nil {
			return false, fmt.Errorf("step %s %s: %w", step.Action, target, err)
		}
		f.log.Info("runbook step done", "service", rb.Service, "action", step.Action, "target", target)
	}
	return f.healthy(ctx, rb.Service)
}

// healthy checks the service is running, and healthy when it reports
// health at all.
func (f *Fixer) healthy(ctx context.Context, service string) (bool, error) {
	detail, err := f.runtime.Inspect(ctx, service)
	if err != nil {
		return false, err
	}
	if detail == nil {
		return false, nil
	}
	if detail.State != "RUNNING" {
		return false, nil
	}
	return detail.Health == "" || detail.Health == "HEALTHY", nil
}

func (f *Fixer) escalate(ctx context.Context, issue Issue, text string) {
	if f.notifier == nil {
		f.log.Warn("no notifier configured", "service", issue.Service)
		return
	}
	sent, err := f.notifier.Notify(ctx, issue.Fingerprint(), text)
	if err != nil {
		f.log.Error("escalation failed", "service", issue.Service, "error", err)
		return
	}
	if sent {
		f.record(ctx, issue, fmt.Sprintf("Escalated %s to operator", issue.Service))
	}
}

func (f *Fixer) record(ctx context.Context, issue Issue, msg string) {
	if f.history == nil {
		return
	}
	_ = f.history.Append(ctx, repository.HistoryEntry{
		Type:     "*FIXER",
		Severity: 40,
		Message:  msg,
		Job:      issue.Service,
		Username: "QSYS",
	})
}

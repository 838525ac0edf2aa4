package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oplab/lab400/internal/database/repository"
)

// Submitter is the slice of the broker the scheduler needs.
type Submitter interface {
	Submit(taskType string, payload map[string]any, queue string, delay time.Duration) (string, error)
}

// Scheduler fires job schedule entries on their cron expressions and
// runs the built-in QNTPSYNC time check. Entries are reloaded from the
// datastore once a minute so WRKJOBSCDE changes take effect without a
// restart.
type Scheduler struct {
	cron      *cron.Cron
	schedule  *repository.ScheduleRepo
	sysvals   *repository.SystemValueRepo
	history   *repository.HistoryRepo
	broker    Submitter
	ntpServer string
	log       *slog.Logger

	entryIDs map[string]cron.EntryID
	specs    map[string]string
}

func New(schedule *repository.ScheduleRepo, sysvals *repository.SystemValueRepo, history *repository.HistoryRepo, broker Submitter, ntpServer string, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		schedule:  schedule,
		sysvals:   sysvals,
		history:   history,
		broker:    broker,
		ntpServer: ntpServer,
		log:       log,
		entryIDs:  map[string]cron.EntryID{},
		specs:     map[string]string{},
	}
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc("*/15 * * * *", func() { s.ntpSync(ctx) }); err != nil {
		return fmt.Errorf("register QNTPSYNC: %w", err)
	}
	s.reload(ctx)
	s.cron.Start()
	defer s.cron.Stop()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

// reload syncs cron registrations with the job_schedule table. Held
// entries are skipped at fire time rather than unregistered, so a
// release takes effect immediately.
func (s *Scheduler) reload(ctx context.Context) {
	entries, err := s.schedule.List(ctx)
	if err != nil {
		s.log.Error("load schedule", "error", err)
		return
	}
	seen := map[string]bool{}
	for _, entry := range entries {
		seen[entry.Name] = true
		if spec, ok := s.specs[entry.Name]; ok && spec == entry.Schedule {
			continue
		}
		if id, ok := s.entryIDs[entry.Name]; ok {
			s.cron.Remove(id)
		}
		name := entry.Name
		id, err := s.cron.AddFunc(entry.Schedule, func() { s.fire(name) })
		if err != nil {
			s.log.Error("register schedule entry", "entry", entry.Name, "schedule", entry.Schedule, "error", err)
			continue
		}
		s.entryIDs[entry.Name] = id
		s.specs[entry.Name] = entry.Schedule
	}
	for name, id := range s.entryIDs {
		if !seen[name] {
			s.cron.Remove(id)
			delete(s.entryIDs, name)
			delete(s.specs, name)
		}
	}
}

// fire submits one schedule entry's command to the broker.
func (s *Scheduler) fire(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entry, err := s.schedule.Get(ctx, name)
	if err != nil || entry == nil {
		return
	}
	if entry.Status != "*SCD" {
		return
	}
	id, err := s.broker.Submit(entry.Command, map[string]any{"submitted_by": "QSYS", "schedule": name}, "QBATCH", 0)
	if err != nil {
		s.log.Error("submit scheduled job", "entry", name, "error", err)
		return
	}
	_ = s.schedule.RecordRun(ctx, name)
	if s.history != nil {
		_ = s.history.Append(ctx, repository.HistoryEntry{
			Type:     "*SCDJOB",
			Message:  fmt.Sprintf("Schedule entry %s submitted job %s", name, id),
			Job:      id,
			Username: "QSYS",
		})
	}
	s.log.Info("scheduled job submitted", "entry", name, "job", id)
}

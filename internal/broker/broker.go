package broker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// JobInfo is a flattened view of one queued or running task, shaped for
// the job screens.
type JobInfo struct {
	ID            string
	Type          string
	Queue         string
	State         string
	Payload       string
	Retried       int
	MaxRetry      int
	LastErr       string
	NextProcessAt time.Time
	CompletedAt   time.Time
	Result        string
}

// QueueStats summarizes one job queue.
type QueueStats struct {
	Name      string
	Size      int
	Active    int
	Pending   int
	Scheduled int
	Retry     int
	Archived  int
	Completed int
	Paused    bool
	Processed int
	Failed    int
}

// Broker submits tasks to the job queues and inspects their state.
type Broker struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func New(redisAddr string) *Broker {
	opt := asynq.RedisClientOpt{Addr: redisAddr}
	return &Broker{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

func (b *Broker) Close() error {
	if err := b.client.Close(); err != nil {
		return err
	}
	return b.inspector.Close()
}

// Submit enqueues a task. A zero delay enqueues immediately; otherwise
// the task is scheduled delay into the future. Returns the task ID.
func (b *Broker) Submit(taskType string, payload map[string]any, queue string, delay time.Duration) (string, error) {
	if queue == "" {
		queue = "QBATCH"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	opts := []asynq.Option{
		asynq.Queue(strings.ToLower(queue)),
		asynq.MaxRetry(3),
		asynq.Retention(24 * time.Hour),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	info, err := b.client.Enqueue(asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return info.ID, nil
}

// Active returns the currently executing tasks across all queues.
func (b *Broker) Active() ([]JobInfo, error) {
	return b.collect(func(q string) ([]*asynq.TaskInfo, error) {
		return b.inspector.ListActiveTasks(q, asynq.PageSize(100))
	})
}

// Pending returns tasks waiting on their queues, including scheduled
// and retrying tasks.
func (b *Broker) Pending() ([]JobInfo, error) {
	var out []JobInfo
	for _, list := range []func(string) ([]*asynq.TaskInfo, error){
		func(q string) ([]*asynq.TaskInfo, error) { return b.inspector.ListPendingTasks(q, asynq.PageSize(100)) },
		func(q string) ([]*asynq.TaskInfo, error) {
			return b.inspector.ListScheduledTasks(q, asynq.PageSize(100))
		},
		func(q string) ([]*asynq.TaskInfo, error) { return b.inspector.ListRetryTasks(q, asynq.PageSize(100)) },
	} {
		jobs, err := b.collect(list)
		if err != nil {
			return nil, err
		}
		out = append(out, jobs...)
	}
	return out, nil
}

// Completed returns recently finished tasks still within retention.
func (b *Broker) Completed() ([]JobInfo, error) {
	return b.collect(func(q string) ([]*asynq.TaskInfo, error) {
		return b.inspector.ListCompletedTasks(q, asynq.PageSize(100))
	})
}

// Job looks up one task by queue and ID. Returns nil when the task no
// longer exists.
func (b *Broker) Job(queue, id string) (*JobInfo, error) {
	info, err := b.inspector.GetTaskInfo(strings.ToLower(queue), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, nil
		}
		return nil, err
	}
	j := fromTaskInfo(info)
	return &j, nil
}

// End removes a task from its queue, cancelling it first if it is
// actively processing.
func (b *Broker) End(queue, id string) error {
	// CancelProcessing is advisory; the handler must honor its context.
	_ = b.inspector.CancelProcessing(id)
	err := b.inspector.DeleteTask(strings.ToLower(queue), id)
	if err != nil && strings.Contains(err.Error(), "not found") {
		return nil
	}
	return err
}

// HoldQueue pauses dispatch from a queue.
func (b *Broker) HoldQueue(queue string) error {
	return b.inspector.PauseQueue(strings.ToLower(queue))
}

// ReleaseQueue resumes dispatch from a held queue.
func (b *Broker) ReleaseQueue(queue string) error {
	return b.inspector.UnpauseQueue(strings.ToLower(queue))
}

// Queues returns stats for every known job queue.
func (b *Broker) Queues() ([]QueueStats, error) {
	names, err := b.inspector.Queues()
	if err != nil {
		return nil, err
	}
	out := make([]QueueStats, 0, len(names))
	for _, name := range names {
		qi, err := b.inspector.GetQueueInfo(name)
		if err != nil {
			return nil, err
		}
		out = append(out, QueueStats{
			Name:      strings.ToUpper(qi.Queue),
			Size:      qi.Size,
			Active:    qi.Active,
			Pending:   qi.Pending,
			Scheduled: qi.Scheduled,
			Retry:     qi.Retry,
			Archived:  qi.Archived,
			Completed: qi.Completed,
			Paused:    qi.Paused,
			Processed: qi.Processed,
			Failed:    qi.Failed,
		})
	}
	return out, nil
}

func (b *Broker) collect(list func(queue string) ([]*asynq.TaskInfo, error)) ([]JobInfo, error) {
	names, err := b.inspector.Queues()
	if err != nil {
		return nil, err
	}
	var out []JobInfo
	for _, name := range names {
		tasks, err := list(name)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			out = append(out, fromTaskInfo(t))
		}
	}
	return out, nil
}

func fromTaskInfo(t *asynq.TaskInfo) JobInfo {
	return JobInfo{
		ID:            t.ID,
		Type:          t.Type,
		Queue:         strings.ToUpper(t.Queue),
		State:         strings.ToUpper(t.State.String()),
		Payload:       string(t.Payload),
		Retried:       t.Retried,
		MaxRetry:      t.MaxRetry,
		LastErr:       t.LastErr,
		NextProcessAt: t.NextProcessAt,
		CompletedAt:   t.CompletedAt,
		Result:        string(t.Result),
	}
}

package runtime

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Service is a flattened view of one managed container, shaped for the
// service screens.
type Service struct {
	ID      string
	Name    string
	Image   string
	State   string
	Status  string
	Health  string
	Created time.Time
}

// ServiceDetail extends Service with inspect-level fields.
type ServiceDetail struct {
	Service
	StartedAt  time.Time
	RestartCnt int
	ExitCode   int
	Ports      []string
	Mounts     []string
	Env        []string
}

// Runtime manages the container runtime that backs the service screens.
type Runtime struct {
	cli *client.Client
}

func New() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("connect container runtime: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}

// List returns all containers, running or not, sorted by name.
func (r *Runtime) List(ctx context.Context) ([]Service, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	out := make([]Service, 0, len(containers))
	for _, c := range containers {
		out = append(out, Service{
			ID:      c.ID,
			Name:    containerName(c.ID, c.Names),
			Image:   c.Image,
			State:   strings.ToUpper(c.State),
			Status:  c.Status,
			Health:  healthFromStatus(c.Status),
			Created: time.Unix(c.Created, 0),
		})
	}
	sortServices(out)
	return out, nil
}

// containerName prefers the first daemon-assigned name, falling back to
// the short ID for containers without one.
func containerName(id string, names []string) string {
	if len(names) > 0 {
		return strings.TrimPrefix(names[0], "/")
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// sortServices orders the list by name so screen pagination is stable
// across refreshes.
func sortServices(s []Service) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
}

// Inspect returns detail for one container by name or ID.
func (r *Runtime) Inspect(ctx context.Context, nameOrID string) (*ServiceDetail, error) {
	info, err := r.cli.ContainerInspect(ctx, nameOrID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("inspect %s: %w", nameOrID, err)
	}
	d := &ServiceDetail{
		Service: Service{
			ID:    info.ID,
			Name:  strings.TrimPrefix(info.Name, "/"),
			Image: info.Config.Image,
		},
		RestartCnt: info.RestartCount,
		Env:        info.Config.Env,
	}
	if info.State != nil {
		d.State = strings.ToUpper(info.State.Status)
		d.ExitCode = info.State.ExitCode
		if t, err := time.Parse(time.RFC3339Nano, info.State.StartedAt); err == nil {
			d.StartedAt = t
		}
		if info.State.Health != nil {
			d.Health = strings.ToUpper(info.State.Health.Status)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, info.Created); err == nil {
		d.Created = t
	}
	for port, bindings := range info.NetworkSettings.Ports {
		for _, b := range bindings {
			d.Ports = append(d.Ports, fmt.Sprintf("%s:%s->%s", b.HostIP, b.HostPort, port))
		}
	}
	for _, m := range info.Mounts {
		d.Mounts = append(d.Mounts, fmt.Sprintf("%s:%s", m.Source, m.Destination))
	}
	return d, nil
}

// Start starts a stopped container.
func (r *Runtime) Start(ctx context.Context, nameOrID string) error {
	if err := r.cli.ContainerStart(ctx, nameOrID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start %s: %w", nameOrID, err)
	}
	return nil
}

// Stop stops a running container with the runtime default grace period.
func (r *Runtime) Stop(ctx context.Context, nameOrID string) error {
	if err := r.cli.ContainerStop(ctx, nameOrID, container.StopOptions{}); err != nil {
		return fmt.Errorf("stop %s: %w", nameOrID, err)
	}
	return nil
}

// Restart restarts a container.
func (r *Runtime) Restart(ctx context.Context, nameOrID string) error {
	if err := r.cli.ContainerRestart(ctx, nameOrID, container.StopOptions{}); err != nil {
		return fmt.Errorf("restart %s: %w", nameOrID, err)
	}
	return nil
}

// Logs returns the last tail lines of a container's combined output.
// The multiplexed stream is demuxed; stdout and stderr are interleaved
// in arrival order.
func (r *Runtime) Logs(ctx context.Context, nameOrID string, tail int) ([]string, error) {
	if tail <= 0 {
		tail = 100
	}
	rc, err := r.cli.ContainerLogs(ctx, nameOrID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
		Tail:       fmt.Sprintf("%d", tail),
	})
	if err != nil {
		return nil, fmt.Errorf("logs %s: %w", nameOrID, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return nil, fmt.Errorf("read logs %s: %w", nameOrID, err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

func healthFromStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "(healthy)"):
		return "HEALTHY"
	case strings.Contains(s, "(unhealthy)"):
		return "UNHEALTHY"
	case strings.Contains(s, "(health: starting)"):
		return "STARTING"
	default:
		return ""
	}
}

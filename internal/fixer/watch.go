package fixer

import (
	"context"
	"fmt"
	"time"
)

const issueCooldown = 10 * time.Minute

// Watch polls the runtime and feeds detected issues into the
// remediation chain until ctx is cancelled. An issue already handled
// recently is skipped so a stuck service does not hammer the advisor.
func (f *Fixer) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	handled := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		for _, issue := range f.scan(ctx) {
			fp := issue.Fingerprint()
			if t, ok := handled[fp]; ok && time.Since(t) < issueCooldown {
				continue
			}
			handled[fp] = time.Now()
			if err := f.HandleIssue(ctx, issue); err != nil {
				f.log.Error("handle issue", "service", issue.Service, "error", err)
			}
		}
	}
}

func (f *Fixer) scan(ctx context.Context) []Issue {
	sctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	services, err := f.runtime.List(sctx)
	if err != nil {
		f.log.Error("scan services", "error", err)
		return nil
	}
	var issues []Issue
	for _, s := range services {
		switch {
		case s.State == "EXITED" || s.State == "DEAD":
			issues = append(issues, Issue{
				Service:   s.Name,
				Condition: "exited",
				Detail:    fmt.Sprintf("container is %s (%s)", s.State, s.Status),
			})
		case s.Health == "UNHEALTHY":
			issues = append(issues, Issue{
				Service:   s.Name,
				Condition: "unhealthy",
				Detail:    fmt.Sprintf("health check failing (%s)", s.Status),
			})
		}
	}
	return issues
}

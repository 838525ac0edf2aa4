package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"github.com/oplab/lab400/internal/database/repository"
)

// ntpSync is the built-in QNTPSYNC job: query the configured NTP server
// and publish clock offset as system values.
func (s *Scheduler) ntpSync(ctx context.Context) {
	resp, err := ntp.Query(s.ntpServer)
	if err != nil {
		s.log.Error("ntp query", "server", s.ntpServer, "error", err)
		_ = s.sysvals.Set(ctx, "QNTPSTS", "FAILED", "QNTPSYNC")
		return
	}
	if err := resp.Validate(); err != nil {
		s.log.Error("ntp response invalid", "server", s.ntpServer, "error", err)
		_ = s.sysvals.Set(ctx, "QNTPSTS", "INVALID", "QNTPSYNC")
		return
	}

	offset := resp.ClockOffset
	_ = s.sysvals.Set(ctx, "QNTPSTS", "OK", "QNTPSYNC")
	_ = s.sysvals.Set(ctx, "QNTPOFFSET", offset.String(), "QNTPSYNC")
	_ = s.sysvals.Set(ctx, "QNTPSRV", s.ntpServer, "QNTPSYNC")
	s.log.Info("ntp sync", "server", s.ntpServer, "offset", offset)

	// Half a second of drift on a homelab box is worth an operator note.
	if offset > 500*time.Millisecond || offset < -500*time.Millisecond {
		if s.history != nil {
			_ = s.history.Append(ctx, repository.HistoryEntry{
				Type:     "*NTP",
				Severity: 30,
				Message:  fmt.Sprintf("Clock offset %s exceeds 500ms (server %s)", offset, s.ntpServer),
				Username: "QSYS",
			})
		}
	}
}

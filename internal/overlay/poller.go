package overlay

import (
	"context"
	"log/slog"
	"time"

	"github.com/kode4food/argyll/editor/internal/scheduler"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

type (
	// Fetcher retrieves the current record of a run
	Fetcher interface {
		GetRun(ctx context.Context, id api.RunID) (*api.ExecutionRecord, error)
	}

	// Poller re-fetches a run record until it reaches a terminal status
	Poller struct {
		fetcher   Fetcher
		makeTimer scheduler.TimerConstructor
		interval  time.Duration
	}

	// UpdateFunc receives every record a Poller fetches
	UpdateFunc func(*api.ExecutionRecord)
)

// NewPoller creates a Poller fetching every interval
func NewPoller(
	f Fetcher, interval time.Duration, makeTimer scheduler.TimerConstructor,
) *Poller {
	return &Poller{
		fetcher:   f,
		makeTimer: makeTimer,
		interval:  interval,
	}
}

// Poll fetches the run immediately and then once per interval, handing
// each record to fn. It returns nil once a terminal record was delivered,
// or the context's error when cancelled first. Fetch failures, including
// a fetch returning no record, are logged and retried on the next tick
func (p *Poller) Poll(ctx context.Context, id api.RunID, fn UpdateFunc) error {
	if p.fetch(ctx, id, fn) {
		return nil
	}
	timer := p.makeTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.Channel():
			if p.fetch(ctx, id, fn) {
				return nil
			}
			timer.Reset(p.interval)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, id api.RunID, fn UpdateFunc) bool {
	rec, err := p.fetcher.GetRun(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Failed to fetch run",
				log.RunID(id),
				log.Error(err))
		}
		return false
	}
	if rec == nil {
		slog.Warn("Run fetch returned no record",
			log.RunID(id))
		return false
	}
	fn(rec)
	return rec.Status.IsTerminal()
}

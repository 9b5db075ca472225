package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
)

// Poller runs the orchestrator on a fixed interval until its context is
// canceled. Runs that find another run in flight are skipped silently.
type Poller struct {
	orch     *Orchestrator
	interval time.Duration
	opts     RunOptions
}

func NewPoller(orch *Orchestrator, interval time.Duration, opts RunOptions) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{orch: orch, interval: interval, opts: opts}
}

// Run blocks until ctx is done. The first tick happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	p.orch.status.setRunning(true)
	defer p.orch.status.setRunning(false)

	logger.Info("[Poller] Started", "interval", p.interval.String(), "sink", p.orch.SinkName())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.tick(ctx)

		select {
		case <-ctx.Done():
			logger.Info("[Poller] Stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	res, err := p.orch.RunOnce(ctx, p.opts)
	switch {
	case errors.Is(err, ErrBusy):
		logger.Debug("[Poller] Run in progress, skipping tick")
	case errors.Is(err, context.Canceled):
	case err != nil:
		logger.Error("[Poller] Run failed", "run_id", res.RunID, "err", err)
	case res.Marked > 0:
		logger.Info("[Poller] Run finished", "run_id", res.RunID, "marked", res.Marked, "duration", res.Duration.String())
	}
}

// Package poller periodically fetches the read-only dialer status of each
// region and the account costs for display next to the upload zones.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rescp17/mailingDashboard/api"
	"github.com/rescp17/mailingDashboard/pkg/concurrency"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStatusInterval = 15 * time.Second
	DefaultCostsInterval  = 30 * time.Second
)

// Source is the subset of the gateway client the poller reads from.
type Source interface {
	Status(ctx context.Context, region mailing.Region) (api.StatusSnapshot, error)
	Costs(ctx context.Context) (api.CostSnapshot, error)
}

// Update is delivered after every fetch. Exactly one of Status, Costs or Err
// describes the result; Region is empty for cost updates.
type Update struct {
	Region mailing.Region
	Status *api.StatusSnapshot
	Costs  *api.CostSnapshot
	Err    error
}

type Config struct {
	StatusInterval time.Duration
	CostsInterval  time.Duration
	Regions        []mailing.Region
}

// Poller fetches on fixed intervals until its context ends. Manual refreshes
// share a per-key guard with the timed fetches, so the same endpoint is never
// queried twice at once.
type Poller struct {
	source  Source
	cfg     Config
	guard   *concurrency.ConcurrencyGuard
	deliver func(Update)
	logger  *slog.Logger
}

func New(source Source, cfg Config, deliver func(Update), logger *slog.Logger) *Poller {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = DefaultStatusInterval
	}
	if cfg.CostsInterval <= 0 {
		cfg.CostsInterval = DefaultCostsInterval
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = mailing.Regions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if deliver == nil {
		deliver = func(Update) {}
	}
	return &Poller{
		source:  source,
		cfg:     cfg,
		guard:   concurrency.NewConcurrencyGuard(),
		deliver: deliver,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, region := range p.cfg.Regions {
		g.Go(func() error {
			return p.loop(ctx, p.cfg.StatusInterval, func(ctx context.Context) {
				p.FetchStatus(ctx, region)
			})
		})
	}
	g.Go(func() error {
		return p.loop(ctx, p.cfg.CostsInterval, p.FetchCosts)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, fetch func(context.Context)) error {
	fetch(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fetch(ctx)
		}
	}
}

// FetchStatus performs one status fetch for region and delivers the result.
func (p *Poller) FetchStatus(ctx context.Context, region mailing.Region) {
	err := p.guard.ExecuteWithContext(ctx, "status:"+string(region), func(ctx context.Context) error {
		snap, err := p.source.Status(ctx, region)
		if err != nil {
			return err
		}
		p.deliver(Update{Region: region, Status: &snap})
		return nil
	})
	p.report(ctx, region, err)
}

// FetchCosts performs one cost fetch and delivers the result.
func (p *Poller) FetchCosts(ctx context.Context) {
	err := p.guard.ExecuteWithContext(ctx, "costs", func(ctx context.Context) error {
		snap, err := p.source.Costs(ctx)
		if err != nil {
			return err
		}
		p.deliver(Update{Costs: &snap})
		return nil
	})
	p.report(ctx, "", err)
}

func (p *Poller) report(ctx context.Context, region mailing.Region, err error) {
	switch {
	case err == nil:
	case errors.Is(err, concurrency.ErrBusy):
		p.logger.Debug("Previous fetch still running, skipping tick", "region", region)
	case ctx.Err() != nil:
		// shutting down
	default:
		p.logger.Warn("Polling failed", "region", region, "error", err)
		p.deliver(Update{Region: region, Err: err})
	}
}

// Refresh fetches everything once, skipping keys already being fetched.
func (p *Poller) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	for _, region := range p.cfg.Regions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.FetchStatus(ctx, region)
		}()
	}
	p.FetchCosts(ctx)
	wg.Wait()
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"MonteSim/internal/domain/models"
	xlogger "MonteSim/pkg/logger"

	"github.com/robfig/cron/v3"
)

type forecaster interface {
	RunForecast(ctx context.Context, p RunParams) (models.RunSnapshot, error)
}

type enqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

type SchedulerOption func(*Scheduler)

// WithQueue hands scheduled runs to queue workers instead of running them
// inline.
func WithQueue(q enqueuer) SchedulerOption {
	return func(s *Scheduler) { s.queue = q }
}

// Scheduler re-runs forecasts for a fixed symbol list on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	runner  forecaster
	queue   enqueuer
	base    RunParams
	symbols []string
	timeout time.Duration
	logger  *xlogger.Logger
}

// NewScheduler registers one job under spec. base supplies everything except
// the symbol.
func NewScheduler(spec string, symbols []string, base RunParams, runner forecaster, l *xlogger.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if l == nil {
		l = xlogger.Nop()
	}
	s := &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		base:    base,
		symbols: symbols,
		timeout: 5 * time.Minute,
		logger:  l.With(xlogger.String("component", "scheduler")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return nil, fmt.Errorf("register forecast job %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", xlogger.Strings("symbols", s.symbols))
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("scheduler stopped")
}

// RunNow forecasts every symbol once, sequentially. Failures are logged and
// do not stop the remaining symbols.
func (s *Scheduler) RunNow() {
	for _, sym := range s.symbols {
		p := s.base
		p.Symbol = sym

		if s.queue != nil {
			s.enqueue(p)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		snap, err := s.runner.RunForecast(ctx, p)
		cancel()
		if err != nil {
			s.logger.Error("scheduled forecast failed",
				xlogger.String("symbol", sym),
				xlogger.Error(err),
			)
			continue
		}
		s.logger.Info("scheduled forecast published",
			xlogger.String("symbol", sym),
			xlogger.String("state", snap.State.String()),
		)
	}
}

func (s *Scheduler) enqueue(p RunParams) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.queue.Enqueue(ctx, RunJobType, RunJobPayload{Kind: models.RunForecast, Params: p}); err != nil {
		s.logger.Error("enqueue scheduled forecast failed",
			xlogger.String("symbol", p.Symbol),
			xlogger.Error(err),
		)
	}
}

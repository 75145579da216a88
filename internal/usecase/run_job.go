package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"MonteSim/internal/domain/models"
	xlogger "MonteSim/pkg/logger"
	"MonteSim/pkg/queue"
)

// RunJobType is the queue message type for deferred runs.
const RunJobType = "simulation.run"

// RunJobPayload is the queued form of a run.
type RunJobPayload struct {
	Kind   models.RunKind `json:"kind"`
	Params RunParams      `json:"params"`
}

type runExecutor interface {
	forecaster
	RunBacktest(ctx context.Context, p RunParams) (models.RunSnapshot, error)
}

// RunJob executes queued runs. Only upstream failures are retried; bad
// parameters and data problems would fail the same way again.
type RunJob struct {
	runner runExecutor
	logger *xlogger.Logger
}

func NewRunJob(runner runExecutor, l *xlogger.Logger) *RunJob {
	if l == nil {
		l = xlogger.Nop()
	}
	return &RunJob{runner: runner, logger: l}
}

var _ queue.Job = (*RunJob)(nil)

func (*RunJob) Type() string { return RunJobType }

func (j *RunJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.Decode[RunJobPayload](payload)
	if err != nil {
		j.logger.Error("dropping malformed run job", xlogger.Error(err))
		return nil
	}

	switch p.Kind {
	case models.RunBacktest:
		_, err = j.runner.RunBacktest(ctx, p.Params)
	case models.RunForecast, "":
		_, err = j.runner.RunForecast(ctx, p.Params)
	default:
		j.logger.Error("dropping run job of unknown kind", xlogger.String("kind", string(p.Kind)))
		return nil
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrUpstreamFetch) {
		return err
	}
	j.logger.Warn("queued run failed",
		xlogger.String("symbol", p.Params.Symbol),
		xlogger.String("kind", string(p.Kind)),
		xlogger.Error(err),
	)
	return nil
}

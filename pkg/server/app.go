package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MonteSim/internal/handler/ws"
	"MonteSim/internal/repository"
	"MonteSim/internal/usecase"
	"MonteSim/pkg/config"
	xhttp "MonteSim/pkg/http"
	applogger "MonteSim/pkg/logger"
	"MonteSim/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	runner     *usecase.SimulationRunner
	hub        *ws.Hub
	publisher  *repository.KafkaRunPublisher
	scheduler  *usecase.Scheduler
	queue      *queue.RedisQueue
}

// New creates a new App instance. publisher, scheduler and q are optional.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	runner *usecase.SimulationRunner,
	hub *ws.Hub,
	publisher *repository.KafkaRunPublisher,
	scheduler *usecase.Scheduler,
	q *queue.RedisQueue,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		runner:     runner,
		hub:        hub,
		publisher:  publisher,
		scheduler:  scheduler,
		queue:      q,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.runner.Attach(a.hub)
	if a.publisher != nil {
		a.runner.Attach(a.publisher)
		a.l.Info("run events published to kafka", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.l.Error("job queue start error", applogger.Error(err))
			_ = a.httpServer.Stop(context.Background())
			return err
		}
	}
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	a.l.Info("application started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("kafka", a.publisher != nil),
		applogger.Bool("queue", a.queue != nil),
		applogger.Bool("scheduler", a.scheduler != nil),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(context.Background())
}

// shutdown stops accepting work, then detaches listeners. Clients are closed
// by the injector cleanup.
func (a *App) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	a.runner.Detach(a.hub)
	if a.publisher != nil {
		a.runner.Detach(a.publisher)
	}

	a.l.Info("shutdown complete")
	return nil
}

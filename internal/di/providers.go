package di

import (
	"context"
	"fmt"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/domain/repository"
	"MonteSim/internal/handler/api"
	"MonteSim/internal/handler/ws"
	internalrepo "MonteSim/internal/repository"
	"MonteSim/internal/service/cache"
	apimetrics "MonteSim/internal/service/metrics"
	"MonteSim/internal/service/ratelimit"
	"MonteSim/internal/service/render"
	"MonteSim/internal/service/yahoo"
	"MonteSim/internal/services/montecarlo"
	"MonteSim/internal/usecase"
	pkgch "MonteSim/pkg/clickhouse"
	"MonteSim/pkg/config"
	xhttp "MonteSim/pkg/http"
	pkgkafka "MonteSim/pkg/kafka"
	"MonteSim/pkg/logger"
	"MonteSim/pkg/metrics"
	"MonteSim/pkg/queue"
	"MonteSim/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func noop() {}

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates a private Prometheus registry with runtime collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apimetrics.Register(reg)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCache picks the fetch cache backend. Remote backends sit behind an
// in-process LRU.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.BytesCache, func(), error) {
	fc := cfg.Fetch.Cache
	var c cache.BytesCache
	switch fc.Backend {
	case "none":
		c = cache.Nop{}
	case "memory":
		c = cache.NewTTLCache(fc.L1Size)
	case "redis":
		rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		c = cache.NewLayered(rc, fc.L1Size, fc.TTL)
	case "sqlite":
		sc, err := cache.NewSQLiteCache(context.Background(), cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite cache: %w", err)
		}
		c = cache.NewLayered(sc, fc.L1Size, fc.TTL)
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", fc.Backend)
	}

	l.Info("fetch cache ready", logger.String("backend", fc.Backend), logger.Duration("ttl", fc.TTL))
	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("cache close error", logger.Error(err))
		}
	}
	return c, cleanup, nil
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Fetch.RateLimit.Requests, cfg.Fetch.RateLimit.Per)
}

func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Fetch.Timeout),
		xhttp.WithUserAgent(cfg.Fetch.UserAgent),
	)
}

// ProvideClickHouseClient connects when clickhouse.enabled is set and returns
// nil otherwise.
func ProvideClickHouseClient(cfg *config.Config, l *logger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, noop, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(ch.Host, ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	l.Info("clickhouse connected", logger.String("host", ch.Host), logger.String("database", ch.Database))

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", logger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvidePriceStore creates the bar archive and applies its schema. Nil when
// ClickHouse is disabled.
func ProvidePriceStore(client *pkgch.Client, l *logger.Logger) (*internalrepo.CHPriceStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewCHPriceStore(client, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideFetcher selects where price data comes from. With an archive
// configured, Yahoo downloads are copied into it.
func ProvideFetcher(
	cfg *config.Config,
	hc *xhttp.Client,
	c cache.BytesCache,
	lim *ratelimit.Limiter,
	m repository.Metrics,
	l *logger.Logger,
	store *internalrepo.CHPriceStore,
) (repository.MarketDataFetcher, error) {
	if cfg.Fetch.Provider == "clickhouse" {
		if store == nil {
			return nil, fmt.Errorf("fetch provider clickhouse requires clickhouse.enabled")
		}
		return store, nil
	}

	yc := yahoo.New(cfg.Fetch.BaseURL, hc,
		yahoo.WithCache(c, cfg.Fetch.Cache.TTL),
		yahoo.WithLimiter(lim),
		yahoo.WithMetrics(m),
		yahoo.WithLogger(l),
	)
	if store == nil {
		return yc, nil
	}
	return internalrepo.NewArchivingFetcher(yc, store, l), nil
}

func ProvideVisualizer(cfg *config.Config) repository.Visualizer {
	return render.New(
		render.WithSize(cfg.Chart.Width, cfg.Chart.Height),
		render.WithSamplePaths(cfg.Chart.SamplePaths),
	)
}

func ProvideRunner(
	cfg *config.Config,
	fetcher repository.MarketDataFetcher,
	viz repository.Visualizer,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SimulationRunner {
	var simOpts []montecarlo.Option
	if cfg.Simulation.CumulativeDrift {
		simOpts = append(simOpts, montecarlo.WithCumulativeDrift())
	}
	if cfg.Simulation.AnchorStepZero {
		simOpts = append(simOpts, montecarlo.WithStepZeroAnchor())
	}
	return usecase.NewSimulationRunner(fetcher, viz,
		usecase.WithLogger(l),
		usecase.WithMetrics(m),
		usecase.WithSimulationOptions(simOpts...),
	)
}

// ProvideBaseParams turns the simulation section into run parameters without
// a symbol.
func ProvideBaseParams(cfg *config.Config) (usecase.RunParams, error) {
	s := cfg.Simulation
	method, err := models.ParseReturnMethod(s.Method)
	if err != nil {
		return usecase.RunParams{}, fmt.Errorf("simulation.method: %w", err)
	}
	return usecase.RunParams{
		Period:           s.Period,
		Method:           method,
		MarketSymbol:     s.MarketSymbol,
		RiskFreeSymbol:   s.RiskFreeSymbol,
		HorizonMonths:    s.HorizonMonths,
		Simulations:      s.Simulations,
		ReturnsWindow:    s.ReturnsWindow,
		VolatilityWindow: s.VolatilityWindow,
	}, nil
}

// ProvideQueue returns a Redis job queue executing runs, or nil when the
// queue is disabled.
func ProvideQueue(cfg *config.Config, runner *usecase.SimulationRunner, l *logger.Logger) (*queue.RedisQueue, func()) {
	if !cfg.Queue.Enabled {
		return nil, noop
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	q := queue.NewRedisQueue(l, queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.WithKeyPrefix(cfg.Queue.Prefix))
	q.Register(usecase.NewRunJob(runner, l))

	return q, func() {
		if err := client.Close(); err != nil {
			l.Warn("redis queue close error", logger.Error(err))
		}
	}
}

// ProvideScheduler returns nil when the schedule is disabled.
func ProvideScheduler(cfg *config.Config, base usecase.RunParams, runner *usecase.SimulationRunner, q *queue.RedisQueue, l *logger.Logger) (*usecase.Scheduler, error) {
	if !cfg.Schedule.Enabled {
		return nil, nil
	}
	var opts []usecase.SchedulerOption
	if q != nil {
		opts = append(opts, usecase.WithQueue(q))
	}
	return usecase.NewScheduler(cfg.Schedule.Spec, cfg.Schedule.Symbols, base, runner, l, opts...)
}

// ProvideKafkaProducer returns nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithBatchTimeout(k.BatchTimeout),
		pkgkafka.WithWriteTimeout(k.WriteTimeout),
		pkgkafka.WithMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRunPublisher owns the producer; its cleanup closes both.
func ProvideRunPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *logger.Logger) (*internalrepo.KafkaRunPublisher, func()) {
	if producer == nil {
		return nil, noop
	}
	p := internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic, l)
	return p, func() {
		if err := p.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}
}

func ProvideHub(l *logger.Logger) (*ws.Hub, func()) {
	h := ws.NewHub(l)
	return h, func() { _ = h.Close() }
}

func ProvideAPIHandler(l *logger.Logger, runner *usecase.SimulationRunner) *api.SimulationEchoHandler {
	return api.NewSimulationEchoHandler(l, runner)
}

// ProvideHTTPServer mounts the REST API, the websocket feed and /metrics.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, reg *prometheus.Registry, h *api.SimulationEchoHandler, hub *ws.Hub) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, xhttp.Handlers{h, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, reg),
	)
}

func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	runner *usecase.SimulationRunner,
	hub *ws.Hub,
	publisher *internalrepo.KafkaRunPublisher,
	scheduler *usecase.Scheduler,
	q *queue.RedisQueue,
) *server.App {
	return server.New(cfg, l, srv, runner, hub, publisher, scheduler, q)
}

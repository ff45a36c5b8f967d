package cli

import (
	"context"
	"time"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/auth/idam"
	redisclient "github.com/turtacn/civil-general-applications/internal/infrastructure/database/redis"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/feeregistry"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/notify"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/payments"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/storage/minio"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
)

// components is the fully wired engine shared by serve and worker.
type components struct {
	cfg       *config.Config
	logger    logging.Logger
	collector prometheus.MetricsCollector
	metrics   *prometheus.EngineMetrics

	redis    *redisclient.Client
	identity *idam.Client
	producer *kafka.Producer

	fees      workflow.FeeService
	decisions workflow.DecisionService
	hwf       workflow.HwfService
	deadlines workflow.DeadlineService

	checks  []handlers.HealthChecker
	closers []func() error
}

// buildComponents connects every collaborator. On error, whatever was opened
// is closed again.
func buildComponents(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *components, err error) {
	c := &components{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	loc, err := time.LoadLocation(cfg.Calendar.Location)
	if err != nil {
		return nil, err
	}

	c.collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, err
	}
	c.metrics = prometheus.NewEngineMetrics(c.collector)

	c.redis, err = redisclient.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.redis.Close)
	c.checks = append(c.checks, handlers.CheckFunc("redis", c.redis.Ping))

	c.identity, err = idam.NewClient(cfg.Identity, logger)
	if err != nil {
		return nil, err
	}

	registry, err := feeregistry.NewClient(cfg.FeeRegistry, logger)
	if err != nil {
		return nil, err
	}
	feeCache := redisclient.NewRedisCache(c.redis, logger,
		redisclient.WithNamespace("fees"),
		redisclient.WithDefaultTTL(cfg.Redis.FeeTTL),
		redisclient.WithTTLJitter(0.1))
	lookup := feeregistry.NewCachedLookup(registry, feeCache, cfg.Redis.FeeTTL, c.metrics, logger)

	pay, err := payments.NewClient(cfg.Payments, logger)
	if err != nil {
		return nil, err
	}
	var sender workflow.NotificationSender
	if cfg.Notify.APIKey != "" {
		n, err := notify.NewClient(cfg.Notify, logger)
		if err != nil {
			return nil, err
		}
		sender = n
	} else {
		logger.Warn("Notify API key not set; notifications disabled")
	}

	c.producer, err = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.producer.Close)
	publisher := kafka.NewBusinessProcessPublisher(c.producer, cfg.Kafka.BusinessProcessTopic)

	store, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return nil, err
	}
	c.checks = append(c.checks, handlers.CheckFunc("minio", store.HealthCheck))
	documents := minio.NewDocumentStore(store, logger)

	c.fees = workflow.NewFeeService(lookup, c.identity, c.metrics, logger, workflow.FeeServiceConfig{
		Keywords:           feeKeywords(cfg.FeeRegistry.Keywords),
		CaseDetailsBaseURL: cfg.Notify.CaseDetailsBaseURL,
	})
	c.decisions = workflow.NewDecisionService(documents, sender, publisher, c.identity, c.metrics, logger,
		workflow.DecisionServiceConfig{Location: loc})
	c.hwf = workflow.NewHwfService(pay, publisher, c.identity, c.metrics, logger, workflow.HwfServiceConfig{
		Features: workflow.Features{CoSCEnabled: cfg.Features.CoSCEnabled},
	})
	c.deadlines = workflow.NewDeadlineService(holidaySources(cfg.Calendar, logger, true), logger,
		workflow.DeadlineServiceConfig{Location: loc, CutOffHour: cfg.Calendar.CutOffHour})
	return c, nil
}

// refreshHolidays reloads holidays now and then every interval until ctx is
// done.
func (c *components) refreshHolidays(ctx context.Context, interval time.Duration) {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := c.deadlines.Refresh(rctx); err != nil {
			c.logger.Warn("Holiday refresh incomplete", logging.Err(err))
		}
	}
	refresh()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			refresh()
		}
	}
}

// Close releases connections in reverse order of opening.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.Warn("Close failed", logging.Err(err))
		}
	}
	c.closers = nil
}

//Personal.AI order the ending

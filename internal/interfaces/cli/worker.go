package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/civil-general-applications/internal/config"
	redisclient "github.com/turtacn/civil-general-applications/internal/infrastructure/database/redis"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/civil-general-applications/internal/interfaces/http"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
	"github.com/turtacn/civil-general-applications/internal/interfaces/worker"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume decision and HWF requests from Kafka",
		Long: `Run the Kafka consumers for the decision and HWF request topics. Each
consumer joins the same group; work on one case is serialised with a redis lock.
Probes and metrics are served on worker.health_port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cc.Config
			if concurrency > 0 {
				cfg.Worker.Concurrency = concurrency
			}
			logger := cc.Logger
			gin.SetMode(cfg.Server.Mode)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			comps, err := buildComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			ensureTopics(ctx, cfg.Kafka, logger)

			consumers := make([]worker.Consumer, 0, cfg.Worker.Concurrency)
			for i := 0; i < cfg.Worker.Concurrency; i++ {
				c, err := kafka.NewConsumer(kafka.ConsumerConfig{
					Brokers: cfg.Kafka.Brokers,
					GroupID: cfg.Kafka.GroupID,
					Topics:  []string{cfg.Kafka.DecisionTopic, cfg.Kafka.HwfTopic},
					Retry: kafka.RetryConfig{
						MaxRetries:      cfg.Kafka.MaxRetries,
						DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
					},
				}, comps.producer, comps.metrics, logger)
				if err != nil {
					return err
				}
				consumers = append(consumers, c)
			}
			locker := redisclient.NewCaseLocker(comps.redis, logger)
			pool := worker.NewPool(consumers,
				worker.Topics{Decision: cfg.Kafka.DecisionTopic, Hwf: cfg.Kafka.HwfTopic},
				worker.NewHandlers(comps.decisions, comps.hwf, locker, logger),
				logger)

			probes := httpapi.NewRouter(httpapi.RouterConfig{
				HealthHandler:  handlers.NewHealthHandler(Version, comps.checks...),
				Logger:         logger,
				Metrics:        comps.metrics,
				MetricsHandler: comps.collector.Handler(),
			})
			srv := httpapi.NewServer(config.ServerConfig{
				Port:            cfg.Worker.HealthPort,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, probes, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return pool.Run(gctx) })
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				return srv.Stop(context.Background())
			})
			logger.Info("Worker started",
				logging.Int("concurrency", cfg.Worker.Concurrency),
				logging.String("group", cfg.Kafka.GroupID))
			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "consumer group members (overrides worker.concurrency)")
	return cmd
}

// ensureTopics creates missing topics. Clusters that forbid topic creation
// are left alone.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		logger.Warn("Topic check skipped", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg)); err != nil {
		logger.Warn("Topic creation failed", logging.Err(err))
	}
}

//Personal.AI order the ending

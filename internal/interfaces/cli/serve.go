package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/auth/idam"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/civil-general-applications/internal/interfaces/http"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/middleware"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the fee, decision, HWF and deadline API until SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cc.Config
			if port > 0 {
				cfg.Server.Port = port
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

			router := httpapi.NewRouter(httpapi.RouterConfig{
				FeeHandler:      handlers.NewFeeHandler(comps.fees, logger),
				DecisionHandler: handlers.NewDecisionHandler(comps.decisions, logger),
				HwfHandler:      handlers.NewHwfHandler(comps.hwf, logger),
				DeadlineHandler: handlers.NewDeadlineHandler(comps.deadlines, logger),
				HealthHandler:   handlers.NewHealthHandler(Version, comps.checks...),
				AuthMiddleware:  middleware.NewAuthMiddleware(comps.identity, logger, middleware.AuthMiddlewareConfig{}),
				Enforcer:        idam.NewEnforcer(idam.DefaultRolePermissionMapping(), logger),
				RateLimit: &middleware.RateLimitConfig{
					RequestsPerSecond: cfg.Server.RateLimitRPS,
					BurstSize:         cfg.Server.RateLimitBurst,
				},
				Logger:         logger,
				Metrics:        comps.metrics,
				MetricsHandler: comps.collector.Handler(),
			})
			srv := httpapi.NewServer(cfg.Server, router, logger)

			watchConfig(cc)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				comps.refreshHolidays(gctx, cfg.Calendar.RefreshInterval)
				return nil
			})
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				return srv.Stop(context.Background())
			})
			logger.Info("General applications engine started", logging.String("version", Version), logging.String("addr", srv.Addr()))
			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides server.port)")
	return cmd
}

// watchConfig logs edits to the config file. Settings are bound at startup,
// so a change only takes effect on restart.
func watchConfig(cc *CLIContext) {
	if cc.ConfigPath == "" {
		return
	}
	config.Watch(cc.ConfigPath,
		func(next *config.Config) {
			cc.Logger.Info("Configuration file changed; restart to apply",
				logging.String("path", cc.ConfigPath),
				logging.String("log_level", next.Log.Level),
				logging.Bool("cosc_enabled", next.Features.CoSCEnabled))
		},
		func(err error) {
			cc.Logger.Warn("Configuration file change rejected", logging.Err(err))
		})
}

//Personal.AI order the ending

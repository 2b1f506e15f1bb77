package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/bazarbot/bazar-telegram-bot/internal/command"
	"github.com/bazarbot/bazar-telegram-bot/internal/command/commandimpl"
	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/discovery/discoveryimpl"
	_ "github.com/bazarbot/bazar-telegram-bot/internal/migrations"
	"github.com/bazarbot/bazar-telegram-bot/internal/ratelimit"
	repositories "github.com/bazarbot/bazar-telegram-bot/internal/repositories/fx"
	"github.com/bazarbot/bazar-telegram-bot/internal/session"
	"github.com/bazarbot/bazar-telegram-bot/internal/telegram"
	"github.com/bazarbot/bazar-telegram-bot/internal/telegram/telegramimpl"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow/workflowimpl"
	"github.com/bazarbot/bazar-telegram-bot/pkg/config"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/bazarbot/bazar-telegram-bot/pkg/pgx"
	"github.com/bazarbot/bazar-telegram-bot/pkg/redis"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		redis.New,
		session.NewManager,
		ratelimit.NewFromConfig,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			workflowimpl.New,
			fx.As(new(workflow.Client)),
		),
		fx.Annotate(
			discoveryimpl.New,
			fx.As(new(discovery.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

// migrate applies the registered goose migrations before anything else runs.
func migrate(c *config.Config, log logger.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Migrations applied")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, cmdClient command.Client, sessions *session.Manager) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			sweepInterval := time.Duration(cfg.Session.SweepMinutes) * time.Minute
			if err := sessions.ScheduleSweep(ctx, sweepInterval); err != nil {
				cancel()
				return err
			}

			go func() {
				if err := cmdClient.HandleCommand(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("Command handler stopped", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start: %v", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"mykharche/internal/amqp"
	"mykharche/internal/api"
	"mykharche/internal/auth"
	"mykharche/internal/backend"
	"mykharche/internal/cache"
	"mykharche/internal/config"
	"mykharche/internal/core"
	apphttp "mykharche/internal/http"
	applog "mykharche/internal/log"
	"mykharche/internal/middleware/ratelimit"
	"mykharche/internal/middleware/security"
	"mykharche/internal/services"
	"mykharche/internal/worker"
)

const (
	drawerSessionLimit = 10000
	authStateLimit     = 10000
	eventBuffer        = 256
	cacheSweepInterval = time.Minute
	shutdownTimeout    = 30 * time.Second

	// readinessDrawerID is never issued to a browser; /readyz reads it to
	// exercise the draft store.
	readinessDrawerID = "readyz"
)

var (
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   "info",
		Usage:   "debug, info, warn or error",
	}
	logFormatFlag = &cli.StringFlag{
		Name:    "log-format",
		Sources: cli.EnvVars("LOG_FORMAT"),
		Value:   "text",
		Usage:   "text or json",
	}
)

// CmdServe runs the web frontend until SIGINT or SIGTERM.
var CmdServe = &cli.Command{
	Name:    "serve",
	Aliases: []string{"start"},
	Usage:   "Start the web frontend",
	Flags:   []cli.Flag{logLevelFlag, logFormatFlag},
	Action:  serve,
}

func serve(ctx context.Context, cmd *cli.Command) error {
	LoadEnvFile()
	logger := SetupLogger(cmd.String("log-level"), cmd.String("log-format"))

	cfg, err := LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	drafts, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := drafts.Close(); err != nil {
			logger.Error("Failed to close draft store", applog.FieldError, err)
		}
	}()

	events := newPublisher(cfg, logger)
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error("Failed to close event publisher", applog.FieldError, err)
		}
	}()

	caches := cache.NewManager(logger)
	sessions := cache.NewLRUCache[*services.Drawer](drawerSessionLimit, cfg.DraftTTL)
	authStates := cache.NewLRUCache[core.AuthState](authStateLimit, cfg.AuthCacheTTL)
	incomeCategories := cache.NewLRUCache[[]core.IncomeCategory](1, cfg.IncomeCategoriesTTL)
	caches.Register("drawer_sessions", sessions)
	caches.Register("auth_states", authStates)
	caches.Register("income_categories", incomeCategories)
	caches.StartCleanup(ctx, cacheSweepInterval)
	defer caches.Stop()

	client := api.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
	detector := security.NewDetector(logger)
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}, logger)

	store := drafts.Store
	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		API:      client,
		Gate:     auth.NewGate(auth.APICheck(client), authStates, logger),
		Drawers:  services.NewDrawerService(sessions, store, incomeCategories, events, logger),
		Entries:  services.NewEntryService(events, logger),
		Limiter:  limiter,
		Detector: detector,
		Headers:  security.DefaultHeadersConfig(),
		Cookies:  auth.Cookies{Secure: cfg.CookieSecure},
		Logger:   logger,
		Ready: func(ctx context.Context) error {
			_, _, err := store.Restore(ctx, readinessDrawerID)
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting MyKharche web frontend",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend_url", cfg.BackendURL,
			"draft_backend", cfg.DraftBackend,
			"events", cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if drafts.Purger != nil {
		janitor := worker.NewDraftJanitor(drafts.Purger, cfg.DraftTTL, cfg.JanitorInterval, logger)
		g.Go(func() error { return janitor.Run(gctx) })
	}

	err = g.Wait()
	logger.Info("Server stopped", applog.FieldOperation, applog.OpShutdown)
	return err
}

// newPublisher connects to the broker when AMQP_URL is set. A broker that
// cannot be reached at start-up disables events instead of failing the server.
func newPublisher(cfg *config.Config, logger *applog.Logger) amqp.Publisher {
	if !cfg.EventsEnabled() {
		return amqp.NoopPublisher{}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("Entry events disabled, broker unreachable",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err)
		return amqp.NoopPublisher{}
	}
	return amqp.NewAsyncPublisher(client, eventBuffer, logger)
}

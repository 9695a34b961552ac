package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/lucaprinsss/Participium-sub003/common/id"
	"github.com/lucaprinsss/Participium-sub003/common/logger"
	"github.com/lucaprinsss/Participium-sub003/common/otel"
	"github.com/lucaprinsss/Participium-sub003/core/config"
	"github.com/lucaprinsss/Participium-sub003/core/db"
	"github.com/lucaprinsss/Participium-sub003/internal/bot"
	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/dedupe"
	"github.com/lucaprinsss/Participium-sub003/internal/gateway"
	"github.com/lucaprinsss/Participium-sub003/internal/geo"
	"github.com/lucaprinsss/Participium-sub003/internal/http/middleware"
	httprouter "github.com/lucaprinsss/Participium-sub003/internal/http/router"
	"github.com/lucaprinsss/Participium-sub003/internal/metrics"
	"github.com/lucaprinsss/Participium-sub003/internal/photo"
	"github.com/lucaprinsss/Participium-sub003/internal/reportapi"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
	"github.com/lucaprinsss/Participium-sub003/internal/store"
	"github.com/lucaprinsss/Participium-sub003/internal/submission"
	"github.com/lucaprinsss/Participium-sub003/internal/wizard"
)

const webhookPath = "/telegram/webhook"

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "intake.main"})

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "participium intake starting",
		"env", cfg.Env,
		"service", cfg.OTel.ServiceName,
		"telegram_mode", cfg.Telegram.Mode,
	)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	accounts := store.NewStores(database.Queries(), database).Accounts()

	deduper, closeDedupe, err := setupDedupe(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up update de-duplication", "error", err)
		os.Exit(1)
	}
	defer closeDedupe()

	tg, err := gateway.New(cfg.Telegram.Token, gateway.Options{
		HTTPClient:   &http.Client{Timeout: cfg.CallTimeout + time.Duration(cfg.Telegram.PollTimeout)*time.Second},
		MaxFileBytes: cfg.Telegram.MaxPhotoBytes,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "telegram connected", "bot", tg.Username())

	boundary, err := loadBoundary(cfg.Boundary)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load city boundary", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "city boundary loaded", "name", boundary.Name())

	geocoder := geo.NewNominatim(geo.NominatimConfig{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		CityBias:  cfg.Geocoder.CityBias,
	}, &http.Client{Timeout: cfg.CallTimeout})

	reports := reportapi.New(cfg.ReportAPI.BaseURL, cfg.ReportAPI.ServiceToken, &http.Client{Timeout: cfg.CallTimeout})

	m := metrics.New()

	engine := wizard.NewEngine(wizard.Config{CallTimeout: cfg.CallTimeout}, wizard.Deps{
		Sessions:  session.NewStore(),
		Accounts:  accounts,
		Locations: geo.NewResolver(geocoder, boundary),
		Photos:    photo.NewCollector(tg),
		Reports:   submission.NewBridge(reports),
		Recorder:  m,
	})

	dispatcher := bot.NewDispatcher(bot.Config{CallTimeout: cfg.CallTimeout}, bot.Deps{
		Wizard:   engine,
		Accounts: accounts,
		Gateway:  tg,
		Dedupe:   deduper,
		Recorder: m,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, dispatcher, m)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if !cfg.Telegram.UsesWebhook() {
		g.Go(func() error {
			return tg.Poll(gctx, cfg.Telegram.PollTimeout, func(ctx context.Context, u chat.Update) {
				if err := dispatcher.Dispatch(ctx, u); err != nil && !errors.Is(err, bot.ErrShuttingDown) {
					slog.ErrorContext(ctx, "failed to dispatch update", "error", err, "update_id", u.ID)
				}
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.InfoContext(ctx, "shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "in-flight updates did not finish", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "intake stopped with error", "error", err)
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}

func setupRouter(cfg config.Config, dispatcher *bot.Dispatcher, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	routerCfg := httprouter.RouterConfig{WebhookSecret: cfg.Telegram.WebhookSecret}
	if cfg.Telegram.UsesWebhook() {
		routerCfg.WebhookPath = webhookPath
	}
	httprouter.SetupRoutes(router, httprouter.Deps{
		Dispatcher: dispatcher,
		Metrics:    m.Handler(),
	}, routerCfg)

	return router
}

// setupDedupe prefers Redis so redelivered webhooks are caught across
// replicas, and falls back to an in-process LRU.
func setupDedupe(ctx context.Context, cfg config.RedisConfig) (dedupe.Deduper, func(), error) {
	if !cfg.Enabled() {
		mem := dedupe.NewMemory(0, cfg.DedupeTTL)
		slog.InfoContext(ctx, "redis disabled, using in-memory update de-duplication")
		return mem, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected")
	return dedupe.NewRedis(client, cfg.DedupeTTL), func() { _ = client.Close() }, nil
}

func loadBoundary(cfg config.BoundaryConfig) (*geo.Boundary, error) {
	if cfg.GeoJSONPath == "" {
		return geo.DefaultBoundary()
	}
	return geo.LoadBoundary(cfg.Name, cfg.GeoJSONPath)
}

const banner = `
 ___          _   _    _      _
| _ \__ _ _ _| |_(_)__(_)_ __(_)_  _ _ __
|  _/ _' | '_|  _| / _| | '_ \ | || | '  \
|_| \__,_|_|  \__|_\__|_| .__/_|\_,_|_|_|_|
                        |_|  telegram intake
`

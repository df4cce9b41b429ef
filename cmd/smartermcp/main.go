package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/smarterbot/smartermcp/internal/adapter/github"
	smhttp "github.com/smarterbot/smartermcp/internal/adapter/http"
	"github.com/smarterbot/smartermcp/internal/adapter/mcp"
	smnats "github.com/smarterbot/smartermcp/internal/adapter/nats"
	"github.com/smarterbot/smartermcp/internal/adapter/odoo"
	"github.com/smarterbot/smartermcp/internal/adapter/otel"
	"github.com/smarterbot/smartermcp/internal/adapter/postgres"
	"github.com/smarterbot/smartermcp/internal/adapter/ristretto"
	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/domain/action"
	"github.com/smarterbot/smartermcp/internal/logger"
	"github.com/smarterbot/smartermcp/internal/port/cache"
	"github.com/smarterbot/smartermcp/internal/port/messagequeue"
	"github.com/smarterbot/smartermcp/internal/resilience"
	"github.com/smarterbot/smartermcp/internal/secrets"
	"github.com/smarterbot/smartermcp/internal/service"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.Logging))

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"mcp_enabled", cfg.MCP.Enabled,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	shutdownOtel, err := otel.Init(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	var events messagequeue.Publisher
	if cfg.NATS.URL != "" {
		queue, err := smnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		events = queue
	}

	// The gate must see the same credential source as the connector:
	// YAML-resolved odoo values first, raw env on top.
	vault, err := secrets.NewVault(secrets.Chain(
		secrets.Static(cfg.Odoo.SecretValues()),
		secrets.EnvLoader(secrets.ProviderKeys()...),
	))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	secretGate := secrets.NewGate(vault)

	// --- Connectors ---

	connector := odoo.NewClient(cfg.Odoo)
	connector.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	provisioner := odoo.NewProvisioner(connector, cfg.Odoo)

	releases := github.NewClient(cfg.Updates.FetchTimeout)
	releases.SetToken(os.Getenv("GITHUB_TOKEN"))
	releases.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	var releaseCache cache.Cache
	if cfg.Updates.CacheSizeMB > 0 {
		c, err := ristretto.New(cfg.Updates.CacheSizeMB << 20)
		if err != nil {
			return fmt.Errorf("release cache: %w", err)
		}
		defer c.Close()
		releaseCache = c
	}

	// --- Services ---

	store := postgres.NewStore(pool)
	gate := service.NewTenantGate(store)
	tenantSvc := service.NewTenantService(store, provisioner, events)
	updateSvc := service.NewUpdateService(cfg.Updates, releases, releaseCache)
	tokenSvc := service.NewTokenService(cfg.Auth)

	dispatcher := service.NewDispatcher(gate, secretGate)
	dispatcher.SetMetrics(metrics)
	dispatcher.Register(action.KindOdooCreateTenant, func(ctx context.Context, req action.Request) (any, error) {
		dbName, err := provisioner.CreateTenantDatabase(ctx, req.Tenant)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"database": dbName,
			"url":      provisioner.TenantURL(req.Tenant),
		}, nil
	})

	// --- HTTP ---

	handlers := &smhttp.Handlers{
		Version:    version,
		Tenants:    tenantSvc,
		Gate:       gate,
		Dispatcher: dispatcher,
		Connector:  connector,
		Secrets:    secretGate,
		Tokens:     tokenSvc,
		Updates:    updateSvc,
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(smhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(smhttp.SecurityHeaders)
	r.Use(smhttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	smhttp.MountRoutes(r, handlers, tokenSvc)

	if cfg.MCP.Enabled {
		mcpSrv := mcp.NewServer(mcp.ServerConfig{
			Name:    "smartermcp",
			Version: version,
			APIKey:  cfg.MCP.APIKey,
		}, mcp.ServerDeps{
			Dispatcher: dispatcher,
			Tenants:    tenantSvc,
			TenantGate: gate,
			Updates:    updateSvc,
			Connector:  connector,
			SecretGate: secretGate,
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mcpSrv.Shutdown(shutdownCtx)
		}()
		r.Mount("/mcp", mcpSrv.Handler())
		slog.Info("mcp server mounted", "path", "/mcp", "auth", cfg.MCP.APIKey != "")
	}

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

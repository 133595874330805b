// Command server runs the falpipe image generation gateway.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, FALPIPE_CONFIG, ./config.yaml, /etc/falpipe/config.yaml),
// then environment overrides. The most common knobs:
//
//	FAL_KEY               - fal.ai API credential
//	FALPIPE_PORT          - Listen port (default: 8080)
//	FALPIPE_QUEUE_URL     - fal queue endpoint (default: https://queue.fal.run)
//	FALPIPE_STORAGE       - Settings store: "memory" or "postgres" (default: "memory")
//	FALPIPE_POSTGRES_DSN  - PostgreSQL connection string
//	FALPIPE_AUTH_TYPE     - Auth mode: "none", "apikey" or "jwt" (default: "none")
//	FALPIPE_DEBUG         - Debug categories (e.g. "backend,engine")
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/auth"
	"github.com/bmertz/falpipe/pkg/auth/apikey"
	"github.com/bmertz/falpipe/pkg/auth/jwt"
	"github.com/bmertz/falpipe/pkg/config"
	"github.com/bmertz/falpipe/pkg/debug"
	"github.com/bmertz/falpipe/pkg/engine"
	"github.com/bmertz/falpipe/pkg/observability"
	"github.com/bmertz/falpipe/pkg/provider/fal"
	"github.com/bmertz/falpipe/pkg/registry"
	"github.com/bmertz/falpipe/pkg/settings"
	"github.com/bmertz/falpipe/pkg/settings/memory"
	"github.com/bmertz/falpipe/pkg/settings/postgres"
	"github.com/bmertz/falpipe/pkg/transport"
	transporthttp "github.com/bmertz/falpipe/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Observability.Logging.Debug, cfg.Observability.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create settings store.
	store, err := newSettingsStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Create backend client.
	prov := fal.New(fal.Config{
		QueueURL:     cfg.Backend.QueueURL,
		Timeout:      cfg.Backend.Timeout,
		PollInterval: cfg.Backend.PollInterval,
	})
	defer prov.Close()

	// Create engine.
	reg := registry.Default()
	eng, err := engine.New(reg, prov, store)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// Create HTTP adapter.
	adapter := transporthttp.NewAdapter(eng, reg, store, transporthttp.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		MaxBodySize: cfg.Server.MaxBodySize,
		Validation: api.ValidationConfig{
			MaxMessages:    cfg.Server.Limits.MaxMessages,
			MaxContentSize: cfg.Server.Limits.MaxContentSize,
		},
	}, transport.Recovery(), transport.RequestID(), transport.Logging(slog.Default()))

	// Build HTTP mux. Settings mutation requires the settings:write scope
	// when the caller's identity carries scopes at all.
	mux := http.NewServeMux()
	mux.Handle("/", adapter.Handler())
	mux.Handle("PUT /v1/settings", auth.RequireScope("settings:write")(adapter.Handler()))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.HealthCheck(r.Context()); err != nil {
			http.Error(w, "settings store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	var handler http.Handler = mux
	authMW, err := newAuthMiddleware(cfg)
	if err != nil {
		return err
	}
	if authMW != nil {
		handler = authMW(handler)
	}
	handler = observability.MetricsMiddleware(handler)

	// Create server.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"queue", cfg.Backend.QueueURL,
			"storage", cfg.Storage.Type,
			"auth", cfg.Auth.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		if n := adapter.InFlight().Count(); n > 0 {
			slog.Info("draining active generations", "count", n)
		}
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// newSettingsStore builds the configured settings store. The initial
// document from config seeds the store; for postgres it only applies when
// no document has been stored yet, so operator edits survive restarts.
func newSettingsStore(ctx context.Context, cfg *config.Config) (settings.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.Storage.Postgres.MaxConnLifetime,
			MigrateOnStart:  cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := store.EnsureDefault(ctx, cfg.Pipe.Initial); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding settings: %w", err)
		}
		slog.Info("settings store ready", "type", "postgres")
		return store, nil
	default:
		slog.Info("settings store ready", "type", "memory")
		return memory.New(cfg.Pipe.Initial), nil
	}
}

// newAuthMiddleware builds the authentication middleware for the configured
// mode. Returns nil when auth is disabled.
func newAuthMiddleware(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	var authn auth.Authenticator
	switch cfg.Auth.Type {
	case "", "none":
		return nil, nil
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key: k.Key,
				Identity: auth.Identity{
					Subject:     k.Subject,
					ServiceTier: k.ServiceTier,
					Scopes:      k.Scopes,
				},
			})
		}
		authn = apikey.New(entries)
	case "jwt":
		authn = jwt.New(jwt.Config{
			Secret:      cfg.Auth.JWT.Secret,
			Issuer:      cfg.Auth.JWT.Issuer,
			Audience:    cfg.Auth.JWT.Audience,
			UserClaim:   cfg.Auth.JWT.UserClaim,
			TierClaim:   cfg.Auth.JWT.TierClaim,
			ScopesClaim: cfg.Auth.JWT.ScopesClaim,
		})
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Auth.Type)
	}

	chain := &auth.Chain{
		Authenticators:  []auth.Authenticator{authn},
		DefaultDecision: auth.No,
	}

	var limiter auth.RateLimiter
	if cfg.Auth.RateLimit.Enabled {
		tiers := make(map[string]auth.TierConfig, len(cfg.Auth.RateLimit.Tiers))
		for name, rpm := range cfg.Auth.RateLimit.Tiers {
			tiers[name] = auth.TierConfig{RequestsPerMinute: rpm}
		}
		limiter = auth.NewInProcessLimiter(tiers, cfg.Auth.RateLimit.DefaultRPM)
	}

	return auth.Middleware(chain, limiter, auth.DefaultBypassEndpoints), nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/config"
	"clubdir/internal/db"
	"clubdir/internal/email"
	"clubdir/internal/jobs"
	"clubdir/internal/logging"
	"clubdir/internal/metrics"
	"clubdir/internal/middleware"
	"clubdir/internal/server"
	"clubdir/internal/services"
	"clubdir/internal/store"
	"clubdir/internal/store/airtable"
	"clubdir/internal/store/memstore"
	"clubdir/internal/store/pgstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	logger, err := logging.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}
	yamlCfg.ApplyTo(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Store backend
	client, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	clk := clock.System{}
	stats := cache.NewStats()
	counted := cache.NewCounted(client, stats)
	c := cache.New(counted, clk, logger)

	policies := db.DefaultPolicies()
	for _, name := range policies.ApplyOverrides(yamlCfg.PolicyOverrides()) {
		logger.Warn("ignoring override for unknown cache policy", zap.String("policy", name))
	}
	policies = policies.WithMaxStale(cfg.CacheMaxStale)

	tables := db.Tables{
		Clubs:          cfg.ClubsTable,
		ClubMembers:    cfg.ClubMembersTable,
		AccessRequests: cfg.AccessRequestsTable,
		Users:          cfg.UsersTable,
		Events:         cfg.EventsTable,
	}
	database := db.New(counted, c, tables, policies, clk, logger)

	// Email
	mail := email.NewService(cfg, logger)
	defer mail.Wait()
	notifier := email.NewNotifier(cfg, mail, database, logger)
	logger.Info("email", zap.String("provider", mail.Provider()))

	authz := services.NewAuthorizer(database)
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, clk)
	if tokens == nil {
		logger.Info("bearer tokens disabled (JWT_SECRET not set)")
	}

	if err := metrics.Register(prometheus.DefaultRegisterer, c, stats); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sessions, err := server.NewSessionStorage(cfg)
	if err != nil {
		return err
	}
	if sessions != nil {
		defer sessions.Close()
	}

	srv := server.New(cfg, logger, sessions)
	err = srv.RegisterRoutes(ctx, server.Deps{
		Clubs:  services.NewClubService(database, authz, notifier, logger),
		Access: services.NewAccessService(database, notifier, logger),
		Events: services.NewEventService(database, authz, logger),
		Users:  services.NewUserService(database, logger),
		Store:  client,
		Tokens: tokens,
		Cache:  c,
		Stats:  stats,
		Mail:   mail,
		Admins: notifier,
		Clock:  clk,
	})
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	sweepEvery := cfg.CacheSweepInterval
	grace, bounded := policies.SweepGrace()
	if !bounded {
		logger.Warn("cache janitor disabled: a stale-fallback policy has no max stale")
		sweepEvery = 0
	}
	janitor := jobs.NewCacheJanitor(c, sweepEvery, grace, logger)
	go janitor.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// openStore connects the configured backend and returns its cleanup func.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Client, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pg.RunMigrations(cfg.DatabaseURL); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed")
		return pg, pg.Close, nil

	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memstore.New(clock.System{}), func() {}, nil

	default:
		at, err := airtable.New(airtable.Config{
			APIURL:            cfg.AirtableAPIURL,
			APIKey:            cfg.AirtableAPIKey,
			BaseID:            cfg.AirtableBaseID,
			RequestsPerSecond: cfg.AirtableRateLimit,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return at, func() {}, nil
	}
}

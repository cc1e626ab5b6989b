package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/backcheck-backend/internal/blacklist"
	"github.com/AnshRaj112/backcheck-backend/internal/config"
	"github.com/AnshRaj112/backcheck-backend/internal/database"
	"github.com/AnshRaj112/backcheck-backend/internal/handlers"
	"github.com/AnshRaj112/backcheck-backend/internal/logger"
	"github.com/AnshRaj112/backcheck-backend/internal/middleware"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
	"github.com/AnshRaj112/backcheck-backend/internal/roblox"
	"github.com/AnshRaj112/backcheck-backend/internal/routes"
	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

func main() {
	// Load env
	envErr := godotenv.Load()
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()
	if envErr != nil {
		log.Info("no .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it every lookup goes upstream
	var cache *services.CacheService
	if cfg.RedisURI != "" {
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Warn("redis unavailable, lookup cache disabled", zap.Error(err))
		} else {
			defer database.DisconnectRedis()
			cache = services.NewCacheService(database.RedisClient, cfg.LookupCacheTTL)
			log.Info("lookup cache enabled", zap.Duration("ttl", cache.TTL()))
		}
	}

	store, err := openBlacklist(ctx, cfg, log)
	if err != nil {
		log.Fatal("open blacklist store", zap.String("source", cfg.BlacklistSource), zap.Error(err))
	}
	defer database.DisconnectPostgres()
	defer database.Disconnect()

	client, err := roblox.NewClient(roblox.Options{
		Endpoints: cfg.Upstream,
		Timeout:   cfg.UpstreamTimeout,
		PageLimit: cfg.PageLimit,
		MaxPages:  cfg.MaxPages,
	})
	if err != nil {
		log.Fatal("create upstream client", zap.Error(err))
	}

	lookup := services.NewLookupService(client, cache, log.Named("lookup"))
	evaluator := services.NewEvaluationService(lookup, store, risk.NewDefault(), cfg.Divisions, log.Named("evaluate"))
	h := handlers.New(lookup, evaluator, cfg.AllowedOrigins, log.Named("http"))

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log.Named("access")))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → StrictTransport → per-IP rate limit
	// Non-production: security headers only
	if cfg.IsProduction() {
		limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Close()
		for _, mw := range middleware.ProductionSecurity(limiter) {
			r.Use(mw)
		}
		log.Info("production security enabled",
			zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
			zap.Int("rate_limit_burst", cfg.RateLimitBurst),
		)
	} else {
		r.Use(middleware.SecurityHeaders)
	}

	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("backcheck backend running",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.Int("divisions", len(cfg.Divisions)),
			zap.String("blacklist_source", cfg.BlacklistSource),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown server", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}
}

// openBlacklist picks the blacklist source named in the config. The database
// connections it opens are closed by the Disconnect helpers in main.
func openBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) (blacklist.Store, error) {
	switch cfg.BlacklistSource {
	case config.BlacklistSourcePostgres:
		if cfg.PostgresURI == "" {
			return nil, errors.New("POSTGRES_URI is required for the postgres blacklist source")
		}
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := blacklist.NewPostgresStore(database.PostgresDB)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure blacklist schema: %w", err)
		}
		log.Info("blacklist loaded from postgres")
		return store, nil

	case config.BlacklistSourceMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGODB_URI is required for the mongo blacklist source")
		}
		if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase); err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		log.Info("blacklist loaded from mongodb", zap.String("database", cfg.MongoDatabase))
		return blacklist.NewMongoStore(database.DB.Collection(blacklist.MongoCollection)), nil

	default:
		if cfg.BlacklistFile == "" {
			log.Info("no blacklist configured")
			return blacklist.NewStaticStore(nil), nil
		}
		store, err := blacklist.LoadFile(cfg.BlacklistFile)
		if err != nil {
			return nil, err
		}
		log.Info("blacklist loaded from file", zap.String("path", cfg.BlacklistFile))
		return store, nil
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/msb418/it-asset-tracker/internal/auth"
	"github.com/msb418/it-asset-tracker/internal/cache"
	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/config"
	"github.com/msb418/it-asset-tracker/internal/handler"
	"github.com/msb418/it-asset-tracker/internal/label"
	"github.com/msb418/it-asset-tracker/internal/middleware"
	"github.com/msb418/it-asset-tracker/internal/service"
	"github.com/msb418/it-asset-tracker/internal/store"
)

const devTokenTTL = 12 * time.Hour

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser, err := cfg.NewLogger("server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Token verification: provider tokens, demo tokens, or both
	var verifiers auth.ChainVerifier
	if cfg.OIDCEnabled() {
		oidc, err := auth.NewOIDCVerifier(ctx, auth.OIDCConfig{
			Issuer:   cfg.OIDCIssuer,
			JWKSURL:  cfg.OIDCJWKSURL,
			Audience: cfg.OIDCAudience,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to create OIDC verifier: %v", err)
		}
		verifiers = append(verifiers, oidc)
	}
	var devVerifier *auth.DevVerifier
	if cfg.DevAuthEnabled() {
		devVerifier, err = auth.NewDevVerifier(cfg.DevAuthSecret, logger)
		if err != nil {
			log.Fatalf("Failed to create dev verifier: %v", err)
		}
		verifiers = append(verifiers, devVerifier)
		logger.Warn("DEV AUTH: demo token endpoint enabled (NEVER use in production!)")
	}
	if len(verifiers) == 0 {
		log.Fatalf("No identity provider configured: set OIDC_ISSUER, OIDC_JWKS_URL or DEV_AUTH_SECRET")
	}
	defer verifiers.Close()

	// Asset store
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare %s store: %v", cfg.StoreBackend, err)
	}

	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load asset type catalog: %v", err)
	}

	renderer, err := label.NewRenderer(cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to load label templates: %v", err)
	}

	assetService := service.NewAssetService(st.Assets, cat, logger)

	routes := &handler.Routes{
		Assets:  handler.NewAssetHandler(assetService, logger),
		Labels:  handler.NewLabelHandler(assetService, renderer, logger),
		Export:  handler.NewExportHandler(assetService, logger),
		Catalog: handler.NewCatalogHandler(cat),
		System:  handler.NewSystemHandler(st.Backend, st.Ping, logger),
	}
	if devVerifier != nil {
		routes.DevAuth = handler.NewDevAuthHandler(devVerifier, devTokenTTL, logger)
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes.Register(mux)

	// Rate limit counters live in Redis when configured so that limits hold
	// across replicas
	var counter middleware.Counter
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		counter = cache.NewRedisCounter(client)
		logger.Info("rate limiting via redis", "addr", cfg.RedisAddr, "per_minute", cfg.RateLimitPerMinute)
	} else {
		counter = cache.NewMemoryCounter()
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logger → Recovery → Auth → RateLimit → Routes
	var h http.Handler = mux
	h = middleware.RateLimit(counter, cfg.RateLimitPerMinute, time.Minute, logger)(h)
	h = middleware.AuthMiddleware(verifiers, logger, "/health", "/auth/dev/token")(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // exports of large inventories
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

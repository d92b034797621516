package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"bozoruz/internal/config"
	"bozoruz/internal/database"
	custommiddleware "bozoruz/internal/middleware"
	"bozoruz/internal/repository"
	"bozoruz/internal/service"
	"bozoruz/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendFile     = "file"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
	SessionBackendSQLite   = "sqlite"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	cart   *service.Cart
	auth   *service.Auth
}

// NewServer builds the storefront: it opens the configured session backend,
// restores the persisted session, loads the catalog and mounts every route.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
	}

	if cfg.Session.Backend == SessionBackendRedis || cfg.RateLimit.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	sessions, err := s.newSessionRepository(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	seed, err := loadCatalog(cfg.Catalog)
	if err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("Catalog loaded",
		zap.Int("products", len(seed.Products)),
		zap.Int("reviews", len(seed.Reviews)),
	)

	// Initialize repositories
	products := repository.NewProductRepository(seed.Products)
	reviews := repository.NewReviewRepository(seed.Reviews)
	orders := repository.NewOrderRepository()

	// Initialize state and services
	s.cart = service.NewCart()
	s.auth = service.NewAuth(sessions,
		service.WithSessionKey(cfg.Session.Key),
		service.WithLatency(cfg.Auth.LoginLatency),
		service.WithAuthLogger(logger.Named("auth")),
	)
	if err := s.auth.Restore(ctx); err != nil {
		logger.Warn("Could not restore session, starting anonymous", zap.Error(err))
	} else if user, ok := s.auth.CurrentUser(); ok {
		logger.Info("Session restored", zap.String("user_id", user.ID))
	}

	tokens := service.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	checkout := service.NewCheckoutService(s.cart, s.auth, orders, logger.Named("checkout"))

	authMiddleware := custommiddleware.AuthMiddleware(tokens, s.auth, logger)
	var limiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		limiter = custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rate_limit:auth",
		}, logger)
	}

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", s.health)

	transport.NewCatalogHandler(products, reviews, logger).RegisterRoutes(router)
	transport.NewCartHandler(s.cart, products, checkout, logger).RegisterRoutes(router, authMiddleware)
	transport.NewAuthHandler(s.auth, tokens, checkout, logger).RegisterRoutes(router, authMiddleware, limiter)
	transport.NewAdminHandler(products, logger).RegisterRoutes(router, authMiddleware)
	transport.NewEventsHandler(s.cart, s.auth, cfg.CORS.AllowedOrigins, logger).RegisterRoutes(router)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) newSessionRepository(ctx context.Context) (repository.SessionRepository, error) {
	backend := s.config.Session.Backend
	s.logger.Info("Using session backend", zap.String("backend", backend))

	switch backend {
	case "", SessionBackendMemory:
		return repository.NewMemorySessionRepository(), nil
	case SessionBackendFile:
		return repository.NewFileSessionRepository(s.config.Session.Dir)
	case SessionBackendRedis:
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return repository.NewRedisSessionRepository(s.redis, "session", s.config.Session.TTL), nil
	case SessionBackendPostgres, SessionBackendSQLite:
		dbCfg := s.config.Database
		dbCfg.Driver = backend
		db, err := database.Open(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		s.db = db
		if err := database.RunMigrations(db, backend, s.logger); err != nil {
			return nil, err
		}
		return repository.NewSQLSessionRepository(db, repository.Dialect(backend))
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func loadCatalog(cfg config.CatalogConfig) (*repository.CatalogSeed, error) {
	if cfg.SeedPath == "" {
		return repository.DefaultCatalogSeed()
	}
	return repository.LoadCatalogSeed(cfg.SeedPath)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":        "ok",
		"authenticated": s.auth.IsAuthenticated(),
		"cart_items":    s.cart.TotalItems(),
	}

	if s.db != nil {
		dbHealth := database.Health(r.Context(), s.db)
		body["database"] = dbHealth
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			body["redis"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			body["redis"] = "up"
		}
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}

package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/techcabinet/apiserver/config"
	"github.com/techcabinet/apiserver/internal/auth"
	"github.com/techcabinet/apiserver/internal/cache"
	"github.com/techcabinet/apiserver/internal/db"
	"github.com/techcabinet/apiserver/internal/handlers"
	"github.com/techcabinet/apiserver/internal/services"
	"github.com/techcabinet/apiserver/internal/store"
)

const redisPingTimeout = 3 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	rdb        *redis.Client
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	var revocationCache auth.RevocationCache
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		revocationCache = cache.NewRevokedTokens(rdb)
	}

	userRepo := store.NewUserRepository(dbConn)
	itemRepo := store.NewItemRepository(dbConn)
	transactionRepo := store.NewTransactionRepository(dbConn)
	revokedRepo := store.NewRevokedTokenRepository(dbConn)

	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(itemRepo)
	checkoutService := services.NewCheckoutService(transactionRepo, itemRepo)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	revocations := auth.NewRevocations(revokedRepo, revocationCache)
	policy := auth.NewPolicy(userRepo, tokens, revocations)

	authHandler := handlers.NewAuthHandler(userService, tokens, revocations, policy, cfg.AdminSecret)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, userService, policy)
	authMiddleware := authHandler.RequireAuth

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/items", func(r chi.Router) {
		handlers.ItemRouter(r, inventoryService, authMiddleware)
	})
	router.Post("/checkout", checkoutHandler.Reserve)
	router.Route("/transactions", func(r chi.Router) {
		handlers.TransactionRouter(r, checkoutHandler, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		rdb:        rdb,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	return s.httpServer.Close()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/config"
	dbRedis "github.com/refstack/paperdex/internal/db/redis"
	logpkg "github.com/refstack/paperdex/internal/logger"
	"github.com/refstack/paperdex/internal/metrics"
	papersrepo "github.com/refstack/paperdex/internal/repository/papers"
	chiTransport "github.com/refstack/paperdex/internal/transport/chi"
	openaiProvider "github.com/refstack/paperdex/internal/transport/openai"
	healthuc "github.com/refstack/paperdex/internal/usecase/health"
	papersuc "github.com/refstack/paperdex/internal/usecase/papers"
	recalluc "github.com/refstack/paperdex/internal/usecase/recall"
	"github.com/refstack/paperdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting paperdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Provider is optional: without credentials the recall engine degrades to
	// text signals and the semantic list search reports it as unavailable.
	var provider *openaiProvider.Provider
	if cfg.HasProvider() {
		provider = openaiProvider.New(&openaiProvider.Config{
			APIKey:     cfg.Provider.APIKey,
			BaseURL:    cfg.Provider.BaseURL,
			EmbedModel: cfg.Provider.EmbedModel,
			ChatModel:  cfg.Provider.ChatModel,
			Dimensions: cfg.Provider.Dimensions,
			Logger:     logger,
		})
		logger.Info("Model provider configured",
			zap.String("embed_model", cfg.Provider.EmbedModel),
			zap.String("chat_model", cfg.Provider.ChatModel),
		)
	} else {
		logger.Warn("No model provider configured, semantic features disabled")
	}

	repo := papersrepo.New(store, cfg.Storage.KeyPrefix)

	// Pass nil interfaces (not typed nil pointers!) when no provider exists.
	// Go gotcha: (*Provider)(nil) wrapped in an interface != nil.
	var papersProvider papersuc.Provider
	var recallProvider recalluc.Provider
	var healthProvider healthuc.ProviderChecker
	if provider != nil {
		papersProvider = provider
		recallProvider = provider
		healthProvider = provider
	}

	papersSvc := papersuc.New(repo, papersProvider, logger)
	recallSvc := recalluc.New(repo, recallProvider, logger)
	healthSvc := healthuc.New(store, healthProvider)

	server := chiTransport.NewServer(papersSvc, recallSvc, healthSvc, logger).
		WithSearchDefaults(cfg.Search.DefaultProfile, cfg.Search.SemanticEnabled, cfg.Search.DefaultPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Mount("/", server.Router(cfg.Auth.APIKeys))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

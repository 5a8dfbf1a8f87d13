// VarunNetra - water quality and health assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/navyasetu/varunnetra/internal/api"
	"github.com/navyasetu/varunnetra/internal/chat"
	"github.com/navyasetu/varunnetra/internal/config"
	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/identity"
	"github.com/navyasetu/varunnetra/internal/metrics"
	"github.com/navyasetu/varunnetra/internal/middleware"
	"github.com/navyasetu/varunnetra/internal/realtime"
	"github.com/navyasetu/varunnetra/internal/respond"
	"github.com/navyasetu/varunnetra/internal/retention"
	"github.com/navyasetu/varunnetra/internal/rpc"
	"github.com/navyasetu/varunnetra/internal/store"
	"github.com/navyasetu/varunnetra/internal/waterdata"
	"github.com/navyasetu/varunnetra/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	var chatMetrics *metrics.ChatMetrics
	registry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		chatMetrics = metrics.NewChatMetrics(registry)
	}

	conversationLogger, err := chat.NewConversationLogger(chat.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
		MaxSizeMB:     cfg.ConversationLog.MaxSizeMB,
		MaxBackups:    cfg.ConversationLog.MaxBackups,
		MaxAgeDays:    cfg.ConversationLog.MaxAgeDays,
		Compress:      cfg.ConversationLog.Compress,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	catalog := i18n.DefaultCatalog()
	opts := []chat.Option{
		chat.WithConversationLogger(conversationLogger),
		chat.WithMetrics(chatMetrics),
		chat.WithCatalog(catalog),
	}

	// Remote responder (optional). The local rule table answers otherwise.
	if cfg.ResponderAddr != "" {
		slog.Info("Attempting to connect to remote responder via gRPC", "address", cfg.ResponderAddr)
		client, err := rpc.NewClient(rpc.DefaultClientConfig(cfg.ResponderAddr), logger)
		if err != nil {
			slog.Warn("Failed to connect to remote responder, using local rule table", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, chat.WithResponder(client))
		}
	}

	hub := chat.NewHub(cfg.SSE.ReplayBuffer)
	chatService := chat.NewService(repo, hub, cfg.Chat, opts...)
	sm := realtime.NewSessionManager()

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, catalog)
	appHandler := api.NewAppHandler(baseHandler)
	healthHandler := api.NewHealthHandler(repo)
	chatHandler := chat.NewHandler(chatService, repo, cfg.SSE)
	waterHandler := waterdata.NewHandler(repo)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	wsHandler := realtime.NewWebSocketHandler(chatService, repo, sm, limiter, cfg.FrontendURL, cfg.IsDevelopment())

	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" && !cfg.IsDevelopment() {
		allowedOrigins = []string{cfg.FrontendURL}
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(allowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Everything else carries an anonymous identity (no auth needed).
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

		appHandler.RegisterRoutes(r)
		chatHandler.RegisterRoutes(r, limiter.Middleware)
		waterHandler.RegisterRoutes(r)

		// WebSocket endpoint.
		r.Get("/ws/chat", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: SSE connections require long timeouts (no WriteTimeout)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for SSE support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter.StartEviction(ctx)

	// Start TTL worker. Expired sessions close their live sockets.
	worker := retention.NewWorker(repo, chatService, cfg.Chat.SessionTTL, cfg.Chat.SweepInterval, sm.CloseSession)
	worker.Start(ctx)
	slog.Info("TTL worker started", "session_ttl", cfg.Chat.SessionTTL)

	// Optional gRPC selector.
	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor(logger)))
		rpc.Register(grpcServer, rpc.NewServer(respond.Default(), chatMetrics))
		go func() {
			slog.Info("gRPC server listening", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				slog.Error("gRPC server failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := chatService.Close(shutdownCtx); err != nil {
		slog.Error("Pending replies not flushed", "error", err)
	}

	slog.Info("Server stopped successfully")
}

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/internal/database"
	"github.com/kindredhq/kindred/internal/logger"
	postgresrepo "github.com/kindredhq/kindred/internal/repository/postgres"
	"github.com/kindredhq/kindred/internal/service"
	"github.com/kindredhq/kindred/internal/transport/http/handlers"
	"github.com/kindredhq/kindred/internal/transport/http/middleware"
	"github.com/kindredhq/kindred/internal/transport/ws"
	"go.uber.org/zap"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	// Database
	pool, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	log.Info("connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	connRepo := postgresrepo.NewConnectionRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	connService := service.NewConnectionService(connRepo, userRepo, convRepo, log)
	feedService := service.NewFeedService(connRepo, userRepo)
	chatService := service.NewChatService(convRepo, connRepo, userRepo, log)

	// Realtime hub
	hub := ws.NewHub(log)
	go hub.Run()
	chatService.SetNotifier(ws.NewHubNotifier(hub, log))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	requestHandler := handlers.NewRequestHandler(connService, log)
	userHandler := handlers.NewUserHandler(connService, feedService, log)
	chatHandler := handlers.NewChatHandler(chatService, log)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret, log)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Feed & connection requests
	mux.Handle("GET /api/v1/feed", auth(http.HandlerFunc(userHandler.Feed)))
	mux.Handle("POST /api/v1/request/send/{status}/{targetUserId}", auth(http.HandlerFunc(requestHandler.Send)))
	mux.Handle("POST /api/v1/request/review/{status}/{requestId}", auth(http.HandlerFunc(requestHandler.Review)))

	// Protected - User
	mux.Handle("GET /api/v1/user/connections", auth(http.HandlerFunc(userHandler.Connections)))
	mux.Handle("GET /api/v1/user/requests/received", auth(http.HandlerFunc(userHandler.RequestsReceived)))
	mux.Handle("GET /api/v1/user/dashboard/stats", auth(http.HandlerFunc(userHandler.DashboardStats)))
	mux.Handle("GET /api/v1/user/dashboard/activity", auth(http.HandlerFunc(userHandler.RecentActivity)))

	// Protected - Chat
	mux.Handle("GET /api/v1/chat/{targetUserId}", auth(http.HandlerFunc(chatHandler.GetConversation)))
	mux.Handle("POST /api/v1/chat/{targetUserId}/message", auth(http.HandlerFunc(chatHandler.SendMessage)))

	// Realtime (token auth happens inside the upgrade handler)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, chatService, cfg.JWTSecret, log))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info("starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

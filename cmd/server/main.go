package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linguadrill/internal/config"
	"linguadrill/internal/database"
	"linguadrill/internal/handlers"
	"linguadrill/internal/repository"
	"linguadrill/internal/security"
	"linguadrill/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect and migrate (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.SessionDuration)
	authService := service.NewAuthService(userRepo, tokens)
	practiceService := service.NewPracticeService(itemRepo, statsRepo, cfg.MasteryMinCorrect, cfg.MasteryAccuracy)
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, practiceService, emailService)
	practiceHandler := handlers.NewPracticeHandler(practiceService)
	itemsHandler := handlers.NewItemsHandler(itemRepo, practiceHandler)

	// Credential endpoints get a per-IP budget
	authLimiter := security.NewRateLimiter(10, time.Minute)

	// Setup routes
	mux := http.NewServeMux()

	mux.Handle("POST /auth/register", authLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /auth/login", authLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(authHandler.Progress))
	mux.HandleFunc("POST /api/progress/email", middleware.RequireAuth(authHandler.EmailProgress))

	// Practice session
	mux.HandleFunc("GET /api/practice/items", middleware.RequireAuth(practiceHandler.Items))
	mux.HandleFunc("GET /api/practice/view", middleware.RequireAuth(practiceHandler.View))
	mux.HandleFunc("POST /api/practice/input", middleware.RequireAuth(practiceHandler.Input))
	mux.HandleFunc("POST /api/practice/validate", middleware.RequireAuth(practiceHandler.Validate))
	mux.HandleFunc("POST /api/practice/enter", middleware.RequireAuth(practiceHandler.Enter))
	mux.HandleFunc("POST /api/practice/clear", middleware.RequireAuth(practiceHandler.Clear))
	mux.HandleFunc("POST /api/practice/answer", middleware.RequireAuth(practiceHandler.Answer))
	mux.HandleFunc("POST /api/practice/sort", middleware.RequireAuth(practiceHandler.Sort))
	mux.HandleFunc("POST /api/practice/count", middleware.RequireAuth(practiceHandler.Count))
	mux.HandleFunc("POST /api/practice/refresh", middleware.RequireAuth(practiceHandler.Refresh))
	mux.HandleFunc("POST /api/practice/reset/open", middleware.RequireAuth(practiceHandler.ResetOpen))
	mux.HandleFunc("POST /api/practice/reset/confirm", middleware.RequireAuth(practiceHandler.ResetConfirm))
	mux.HandleFunc("POST /api/practice/reset/close", middleware.RequireAuth(practiceHandler.ResetClose))
	mux.HandleFunc("POST /api/practice/error/clear", middleware.RequireAuth(practiceHandler.ClearError))

	// Item management
	mux.HandleFunc("GET /api/items", middleware.RequireAuth(itemsHandler.List))
	mux.HandleFunc("POST /api/items", middleware.RequireAuth(itemsHandler.Create))
	mux.HandleFunc("PUT /api/items/{id}", middleware.RequireAuth(itemsHandler.Update))
	mux.HandleFunc("DELETE /api/items/{id}", middleware.RequireAuth(itemsHandler.Delete))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

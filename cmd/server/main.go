package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "borrowly-backend/internal/api/http"
	"borrowly-backend/internal/config"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/notify"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/repository/postgres"
	"borrowly-backend/internal/security"
	"borrowly-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Borrowly Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Payment Processor client
	processor := payment.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		time.Duration(cfg.Payment.TimeoutSeconds)*time.Second,
	)

	// Initialize Notification channels. Push and email are optional; a
	// missing credential disables the channel, it never blocks startup.
	var emailSender notify.EmailSender
	if cfg.Email.SendGridAPIKey != "" {
		emailSender = notify.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
		logger.Info("Email notifications enabled", "from", cfg.Email.FromEmail)
	} else {
		logger.Warn("SendGrid API key not configured; email notifications disabled")
	}

	var pushSender notify.PushSender
	if cfg.Push.CredentialsFile != "" {
		pushSender, err = notify.NewFCMSender(context.Background(), cfg.Push.CredentialsFile, cfg.Push.ProjectID)
		if err != nil {
			logger.Warn("Failed to initialize push sender; push notifications disabled", "error", err)
			pushSender = nil
		} else {
			logger.Info("Push notifications enabled", "project_id", cfg.Push.ProjectID)
		}
	}

	notifier := notify.NewDispatcher(store.Notifications, store.Users, emailSender, pushSender)

	// Initialize Services
	txService := service.NewTransactionService(
		store.Transactions,
		store.Listings,
		store.Users,
		store.Ratings,
		processor,
		notifier,
		cfg.Payment.PlatformFeePercent/100,
		int32(cfg.Payment.MinChargeCents),
	)

	// Initialize Router
	router := httpapi.NewRouter(txService, store.Notifications, tokenManager, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

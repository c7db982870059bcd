package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"borrowly-backend/internal/config"
	"borrowly-backend/internal/jobs"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/notify"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/repository/postgres"
	"borrowly-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-overdue-reminders', 'reconcile-payments', 'all')")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Borrowly Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Payment Processor client
	processor := payment.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		time.Duration(cfg.Payment.TimeoutSeconds)*time.Second,
	)

	// Notification channels are optional for the job runner too
	var emailSender notify.EmailSender
	if cfg.Email.SendGridAPIKey != "" {
		emailSender = notify.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	}
	var pushSender notify.PushSender
	if cfg.Push.CredentialsFile != "" {
		pushSender, err = notify.NewFCMSender(context.Background(), cfg.Push.CredentialsFile, cfg.Push.ProjectID)
		if err != nil {
			logger.Warn("Failed to initialize push sender; push notifications disabled", "error", err)
			pushSender = nil
		}
	}
	notifier := notify.NewDispatcher(store.Notifications, store.Users, emailSender, pushSender)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, processor, notifier, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "reconcile-payments":
		jobRunner.ReconcilePayments()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-overdue-reminders\n")
		fmt.Printf("  - reconcile-payments\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/db"
	"rsvp-harvester-go/internal/extract"
	"rsvp-harvester-go/internal/fetcher"
	"rsvp-harvester-go/internal/handlers"
	"rsvp-harvester-go/internal/labeler"
	"rsvp-harvester-go/internal/ledger"
	"rsvp-harvester-go/internal/metrics"
	"rsvp-harvester-go/internal/notifier"
	"rsvp-harvester-go/internal/scheduler"
	"rsvp-harvester-go/internal/server"
	"rsvp-harvester-go/internal/store"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting RSVP Harvester Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	ldg := ledger.New(dbConn)

	var source fetcher.MessageSource
	var labels labeler.LabelSink
	if cfg.Gmail.UseIMAP {
		source, err = fetcher.NewIMAPFetcher(&cfg.Gmail, cfg.Scheduler.MaxMessagesPerRun)
		if err != nil {
			return fmt.Errorf("failed to create IMAP fetcher: %w", err)
		}
		labels, err = labeler.NewIMAPLabeler(&cfg.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create IMAP labeler: %w", err)
		}
		logrus.Info("Using IMAP for email fetching")
	} else {
		source, err = fetcher.NewGmailFetcher(&cfg.Gmail, cfg.Scheduler.MaxMessagesPerRun)
		if err != nil {
			return fmt.Errorf("failed to create Gmail fetcher: %w", err)
		}
		labels, err = labeler.NewGmailLabeler(&cfg.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create Gmail labeler: %w", err)
		}
		logrus.Info("Using Gmail API for email fetching")
	}
	if cfg.Gmail.Label == "" {
		labels = labeler.NoopLabeler{}
		logrus.Warn("No label configured, processed messages will not be tagged")
	}

	var rowStore store.RowStore
	if cfg.Sheets.SpreadsheetID != "" {
		rowStore, err = store.NewSheetsStore(context.Background(), &cfg.Gmail, &cfg.Sheets)
		if err != nil {
			return fmt.Errorf("failed to create Sheets store: %w", err)
		}
		logrus.Infof("Appending records to spreadsheet %s", cfg.Sheets.SpreadsheetID)
	} else {
		rowStore = store.NewMemoryStore()
		logrus.Warn("No spreadsheet configured, running against an in-memory store")
	}

	var sink notifier.NotificationSink = notifier.NoopNotifier{}
	if cfg.Notify.Enabled {
		sink, err = notifier.NewGmailNotifier(&cfg.Gmail, &cfg.Notify)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
	}

	pipeline := extract.NewPipeline(&cfg.Parser)
	appender := store.NewDeduplicatingAppender(rowStore, cfg.Sheets.NameColumn, cfg.Sheets.EmailColumn)

	sched := scheduler.NewScheduler(&cfg.Scheduler, source, pipeline, appender, labels, sink, ldg, m)

	h := handlers.NewHandlers(dbConn, ldg, sched)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := source.Close(); err != nil {
		logrus.Errorf("Failed to close fetcher: %v", err)
	}
	if err := labels.Close(); err != nil {
		logrus.Errorf("Failed to close labeler: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

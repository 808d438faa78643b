package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/internal/workerconfig"
	"github.com/ormstack/moderation-go/pkg/audit"
	"github.com/ormstack/moderation-go/pkg/classifier"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/db"
	"github.com/ormstack/moderation-go/pkg/interfaces/meta"
	"github.com/ormstack/moderation-go/pkg/policy"
	"github.com/ormstack/moderation-go/pkg/queue"
	"github.com/ormstack/moderation-go/pkg/worker"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Get log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithFields(logrus.Fields{
			"attempted_level": logLevel,
			"default_level":   "INFO",
		}).Warn("Invalid log level specified, defaulting to INFO")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerCfg := workerconfig.Load(log)

	// Initialize database
	gormDB, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up database")
	}

	// Initialize classifier
	classifierConfig, err := classifier.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create classifier config")
	}

	cls, err := classifier.NewOpenAIClassifier(classifierConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create classifier")
	}

	// Initialize Meta Graph API client
	metaConfig, err := meta.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create Meta config")
	}
	// Override logger to use our main logger
	metaConfig.Logger = log

	metaClient, err := meta.NewClient(metaConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Meta client")
	}

	// Initialize stores and queue
	comments := comment.NewStore(gormDB, log)
	policies := policy.NewStore(gormDB, log)
	auditor := audit.NewStore(gormDB, log)
	actionQueue := queue.NewPostgresQueue(gormDB, log, workerCfg.VisibilityTimeout)

	// Initialize worker
	w, err := worker.New(worker.Config{
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create worker")
	}

	handlerList, err := workerconfig.ConfigureHandlers(workerconfig.HandlerConfig{
		Comments:   comments,
		Policies:   policies,
		Classifier: cls,
		Platform:   metaClient,
		Queue:      actionQueue,
		Auditor:    auditor,
		Logger:     log,
		Worker:     workerCfg,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to configure handlers")
	}

	for _, h := range handlerList {
		if err := w.RegisterHandler(h); err != nil {
			log.WithError(err).Fatal("Failed to register handler")
		}
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	log.Info("Starting comment moderation worker")

	// Run the worker
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("Worker stopped with error")
	}

	log.Info("Worker shutdown complete")
}

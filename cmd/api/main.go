package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"outreach_backend/internal/board"
	"outreach_backend/internal/discovery"
	"outreach_backend/internal/emailcheck"
	"outreach_backend/internal/engine"
	"outreach_backend/internal/http/handler"
	"outreach_backend/internal/http/router"
	"outreach_backend/internal/mailbox"
	"outreach_backend/internal/mailer"
	"outreach_backend/internal/notify"
	"outreach_backend/internal/reconciler"
	"outreach_backend/internal/scheduler"
	"outreach_backend/platform/config"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	boardClient := board.New(cfg, log)

	queries, err := engine.LoadQueries(cfg.QueriesFile)
	if err != nil {
		log.Error("failed to load queries file", "error", err)
		panic("failed to load queries file: " + err.Error())
	}

	source := discovery.New(cfg, log)
	if !cfg.IsDiscoveryEnabled() {
		log.Warn("GOOGLE_PLACES_API_KEY not configured; imports will find nothing")
	}

	var sender engine.Mailer = mailer.DisabledSender{}
	if cfg.IsEmailEnabled() {
		sender = mailer.NewSMTPSender(cfg, log)
	} else {
		log.Warn("outbound email disabled; send batches will fail per lead")
	}

	checker := emailcheck.New(cfg, log)

	// ========================================================================
	// Domain Layer
	// ========================================================================

	eng := engine.New(boardClient, source, sender, checker, queries, eventBus, cfg.SendDelay, log)

	imapDialer := mailbox.NewDialer(cfg)
	rec := reconciler.New(reconciler.DialerFunc(func() (reconciler.Session, error) {
		return imapDialer.Dial()
	}), boardClient, eventBus, log)
	if !cfg.IsMailboxEnabled() {
		log.Warn("IMAP not configured; reply reconciliation will fail when invoked")
	}

	notifier := notify.NewTelegram(cfg, log)
	notifier.Subscribe(eventBus)

	// ========================================================================
	// Background Worker
	// ========================================================================

	var queue scheduler.BatchScheduler
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer client.Close()
		queue = client

		worker, err := scheduler.NewWorker(cfg, eng, rec, log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
		go worker.Run(ctx)
		log.Info("background worker started", "queue", cfg.AsynqQueueName)
	} else {
		log.Warn("REDIS_URL not configured; async batches and periodic reconcile disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	apiHandler := handler.New(eng, rec, queue, val)
	ginEngine := router.New(cfg, apiHandler, log)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- ginEngine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"outreach_backend/internal/engine"
	"outreach_backend/internal/reconciler"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	periodic      *asynq.Scheduler
	engine        *engine.Engine
	reconciler    *reconciler.Reconciler
	reconcileCron string
	queue         string
	log           *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, eng *engine.Engine, rec *reconciler.Reconciler, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		// Batches hit one shared SMTP account and one board token;
		// running them in parallel helps nothing.
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	var periodic *asynq.Scheduler
	if cfg.GetReconcileCron() != "" {
		periodic = asynq.NewScheduler(opt, nil)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		periodic:      periodic,
		engine:        eng,
		reconciler:    rec,
		reconcileCron: cfg.GetReconcileCron(),
		queue:         queue,
		log:           log,
	}

	mux.HandleFunc(TaskImportRegion, w.handleImportRegion)
	mux.HandleFunc(TaskSendBatch, w.handleSendBatch)
	mux.HandleFunc(TaskReconcileReplies, w.handleReconcileReplies)

	return w, nil
}

func (w *Worker) handleImportRegion(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportRegionPayload(task)
	if err != nil {
		return err
	}
	_, err = w.engine.ImportRegion(ctx, payload.Region)
	return err
}

func (w *Worker) handleSendBatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSendBatchPayload(task)
	if err != nil {
		return err
	}
	_, err = w.engine.SendBatch(ctx, payload.Region, payload.Limit)
	return err
}

func (w *Worker) handleReconcileReplies(ctx context.Context, _ *asynq.Task) error {
	_, err := w.reconciler.Reconcile(ctx)
	return err
}

// Run blocks serving tasks until the context is cancelled. When a
// reconcile cron is configured the periodic scheduler runs alongside.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if w.periodic != nil {
		if _, err := w.periodic.Register(w.reconcileCron, NewReconcileRepliesTask(), asynq.Queue(w.queue)); err != nil {
			w.log.Error("register reconcile cron", "error", err)
		} else {
			go func() {
				if err := w.periodic.Run(); err != nil {
					w.log.Error("periodic scheduler stopped", "error", err)
				}
			}()
			go func() {
				<-ctx.Done()
				w.periodic.Shutdown()
			}()
		}
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// Package engine is the lead lifecycle orchestrator. It owns the import
// and send batch flows, decides status transitions, and leaves all board
// I/O to the board adapter. Collaborators are injected as small
// interfaces so batches are testable without a live board or mailbox.
package engine

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"outreach_backend/internal/board"
	"outreach_backend/internal/dedup"
	"outreach_backend/internal/discovery"
	domevents "outreach_backend/internal/events"
	"outreach_backend/internal/lifecycle"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/phone"
)

// BoardAPI is the slice of the board adapter the engine needs.
type BoardAPI interface {
	GetOrCreateList(ctx context.Context, region string) (board.List, error)
	ListTasks(ctx context.Context, list board.List) ([]board.Task, error)
	CreateTask(ctx context.Context, list board.List, lead board.Lead) (board.Task, error)
	MoveStatus(ctx context.Context, taskID string, to lifecycle.Status) error
	Stats(ctx context.Context, region string) (board.RegionStats, error)
}

// Source supplies candidate places for a query.
type Source interface {
	Search(ctx context.Context, query string) ([]discovery.RawPlace, error)
}

// Mailer dispatches one proposal email.
type Mailer interface {
	Send(ctx context.Context, to, clinicName, clinicSite string) error
}

// Verifier answers whether an address is worth sending to. Unconfigured
// implementations answer true for everything.
type Verifier interface {
	Sendable(ctx context.Context, email string) (bool, error)
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Region  string `json:"region"`
	Found   int    `json:"found"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// SendReport summarizes one send batch.
type SendReport struct {
	Region         string `json:"region"`
	Sent           int    `json:"sent"`
	Invalid        int    `json:"invalid"`
	SkippedNoEmail int    `json:"skipped_no_email"`
	FailedSend     int    `json:"failed_send"`
	RemainingReady int    `json:"remaining_ready"`
}

// Engine orchestrates the lead lifecycle.
type Engine struct {
	boardAPI BoardAPI
	source   Source
	mailer   Mailer
	verifier Verifier
	queries  *QueryBook
	bus      events.Bus
	limiter  *rate.Limiter
	log      *logger.Logger
}

// New wires an engine. sendDelay paces outbound email so the SMTP
// provider is never burst-hit; zero disables pacing.
func New(boardAPI BoardAPI, source Source, mailer Mailer, verifier Verifier, queries *QueryBook, bus events.Bus, sendDelay time.Duration, log *logger.Logger) *Engine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if sendDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(sendDelay), 1)
	}
	return &Engine{
		boardAPI: boardAPI,
		source:   source,
		mailer:   mailer,
		verifier: verifier,
		queries:  queries,
		bus:      bus,
		limiter:  limiter,
		log:      log,
	}
}

// ImportRegion discovers candidate clinics for a region and creates a
// board task for each one not already known. Per-lead failures are
// counted and logged, never raised; only board or context failures abort
// the run.
func (e *Engine) ImportRegion(ctx context.Context, region string) (ImportReport, error) {
	ctx = context.WithValue(ctx, logger.RegionKey, region)
	log := e.log.WithContext(ctx)

	list, err := e.boardAPI.GetOrCreateList(ctx, region)
	if err != nil {
		return ImportReport{}, err
	}
	report := ImportReport{Region: list.Region}

	existing, err := e.boardAPI.ListTasks(ctx, list)
	if err != nil {
		return ImportReport{}, err
	}
	idx := dedup.Build(existing)
	log.Info("import starting", "existing_tasks", len(existing), "dedup_keys", idx.Len())

	candidates, err := e.discover(ctx, list.Region, &report)
	if err != nil {
		return ImportReport{}, err
	}

	for _, place := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		lead := leadFromPlace(place)
		if lead.Name == "" {
			report.Skipped++
			continue
		}
		if idx.Contains(lead) {
			report.Skipped++
			continue
		}

		if _, err := e.boardAPI.CreateTask(ctx, list, lead); err != nil {
			report.Skipped++
			log.LeadSkipped("import", lead.Name, err)
			continue
		}
		idx.Register(lead)
		report.Created++
	}

	log.Info("import finished",
		"found", report.Found, "created", report.Created, "skipped", report.Skipped)
	e.bus.Publish(ctx, domevents.NewImportCompleted(report.Region, report.Found, report.Created, report.Skipped))
	return report, nil
}

// discover runs every configured query for the region and collapses the
// combined result set against itself; two query phrasings routinely
// return the same place. Intra-run duplicates count as found and skipped
// so the report's found always equals created plus skipped. Queries run
// concurrently; the merge stays in query order so reports are stable.
func (e *Engine) discover(ctx context.Context, region string, report *ImportReport) ([]discovery.RawPlace, error) {
	queries := e.queries.For(region)
	results := make([][]discovery.RawPlace, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			places, err := e.source.Search(gctx, query)
			if err != nil {
				return err
			}
			results[i] = places
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []discovery.RawPlace
	for _, places := range results {
		for _, p := range places {
			report.Found++
			key := p.ID
			if key == "" {
				key = strings.ToLower(p.Name) + "|" + strings.ToLower(p.Address)
			}
			if _, dup := seen[key]; dup {
				report.Skipped++
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

// SendBatch sends proposal emails to up to limit READY leads in a region.
// Transitions: validated-and-sent moves to SENT, failed validation moves
// to INVALID, transport failure leaves the task in READY for the next
// run. A lead with no discoverable email is counted and left alone.
func (e *Engine) SendBatch(ctx context.Context, region string, limit int) (SendReport, error) {
	ctx = context.WithValue(ctx, logger.RegionKey, region)
	log := e.log.WithContext(ctx)

	list, err := e.boardAPI.GetOrCreateList(ctx, region)
	if err != nil {
		return SendReport{}, err
	}
	report := SendReport{Region: list.Region}

	tasks, err := e.boardAPI.ListTasks(ctx, list)
	if err != nil {
		return SendReport{}, err
	}

	var ready []board.Task
	for _, t := range tasks {
		if t.Status == lifecycle.StatusReady {
			ready = append(ready, t)
		}
	}

	batch := ready
	if limit > 0 && len(batch) > limit {
		batch = batch[:limit]
	}
	log.Info("send batch starting", "total", len(tasks), "ready", len(ready), "processing", len(batch))

	for _, task := range batch {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		email := task.DiscoverableEmail()
		if email == "" {
			log.LeadSkipped("send", task.Name, apperr.Validation("no discoverable email"))
			report.SkippedNoEmail++
			continue
		}

		sendable, err := e.verifier.Sendable(ctx, email)
		if err != nil {
			// Validator outage must not stall the batch; treat as sendable.
			log.Warn("email validation unavailable", "email", email, "error", err.Error())
			sendable = true
		}
		if !sendable {
			if err := e.move(ctx, task, lifecycle.StatusInvalid); err != nil {
				report.FailedSend++
				log.LeadSkipped("send", task.Name, err)
				continue
			}
			report.Invalid++
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return report, err
		}
		if err := e.mailer.Send(ctx, email, task.Name, task.Website); err != nil {
			report.FailedSend++
			log.LeadSkipped("send", task.Name, err)
			continue
		}

		if err := e.move(ctx, task, lifecycle.StatusSent); err != nil {
			// The mail left; count the send and surface the board problem.
			log.LeadSkipped("send", task.Name, err)
		}
		report.Sent++
	}

	processed := report.Sent + report.Invalid + report.SkippedNoEmail + report.FailedSend
	report.RemainingReady = len(ready) - processed
	if report.RemainingReady < 0 {
		report.RemainingReady = 0
	}

	log.Info("send batch finished",
		"sent", report.Sent, "invalid", report.Invalid,
		"skipped_no_email", report.SkippedNoEmail, "failed_send", report.FailedSend,
		"remaining_ready", report.RemainingReady)
	e.bus.Publish(ctx, domevents.NewBatchSent(report.Region, report.Sent, report.Invalid,
		report.SkippedNoEmail, report.FailedSend, report.RemainingReady))
	return report, nil
}

// AddLead creates a single operator-supplied lead, subject to the same
// dedup as an import run.
func (e *Engine) AddLead(ctx context.Context, region string, lead board.Lead) (board.Task, error) {
	if strings.TrimSpace(lead.Name) == "" {
		return board.Task{}, apperr.Validation("lead name is required")
	}
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Phone = phone.NormalizeE164(lead.Phone)
	if lead.Source == "" {
		lead.Source = "manual"
	}
	if lead.Email != "" {
		sendable, err := e.verifier.Sendable(ctx, lead.Email)
		if err != nil {
			e.log.Warn("email verification failed, accepting lead", "email", lead.Email, "error", err)
		} else if !sendable {
			return board.Task{}, apperr.Validation("email address is undeliverable")
		}
	}

	list, err := e.boardAPI.GetOrCreateList(ctx, region)
	if err != nil {
		return board.Task{}, err
	}
	existing, err := e.boardAPI.ListTasks(ctx, list)
	if err != nil {
		return board.Task{}, err
	}
	if dedup.Build(existing).Contains(lead) {
		return board.Task{}, apperr.New(apperr.KindConflict, "lead already exists in "+list.Name)
	}
	return e.boardAPI.CreateTask(ctx, list, lead)
}

// Stats reports a region's list breakdown.
func (e *Engine) Stats(ctx context.Context, region string) (board.RegionStats, error) {
	return e.boardAPI.Stats(ctx, region)
}

// move applies a status transition after checking it against the
// lifecycle table. An illegal move is a programming error upstream and
// is rejected rather than forwarded to the board.
func (e *Engine) move(ctx context.Context, task board.Task, to lifecycle.Status) error {
	if !lifecycle.CanTransition(task.Status, to) {
		return apperr.New(apperr.KindConflict,
			"illegal transition "+string(task.Status)+" -> "+string(to))
	}
	return e.boardAPI.MoveStatus(ctx, task.ID, to)
}

// leadFromPlace normalizes a raw discovery result into a Lead.
func leadFromPlace(p discovery.RawPlace) board.Lead {
	return board.Lead{
		Name:     strings.TrimSpace(p.Name),
		Website:  strings.TrimSpace(p.Website),
		Phone:    phone.NormalizeE164(p.Phone),
		Address:  strings.TrimSpace(p.Address),
		City:     strings.TrimSpace(p.City),
		Category: p.Category,
		Source:   "places-search",
	}
}

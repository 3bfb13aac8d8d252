// Package reconciler maps inbound reply emails back onto board tasks.
// A reply from a known lead moves that lead's task to REPLIED; every
// processed message is marked seen whether it matched or not, so the
// inbox never re-presents it.
package reconciler

import (
	"context"

	"outreach_backend/internal/board"
	domevents "outreach_backend/internal/events"
	"outreach_backend/internal/lifecycle"
	"outreach_backend/internal/mailbox"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
)

// Session is one open mailbox connection.
type Session interface {
	Unseen() ([]mailbox.Message, error)
	MarkSeen(uid uint32) error
	Close() error
}

// Dialer opens mailbox sessions.
type Dialer interface {
	Dial() (Session, error)
}

// Finder is the slice of the board adapter the reconciler needs.
type Finder interface {
	FindTaskByEmail(ctx context.Context, email string) (*board.TaskRef, error)
	MoveStatus(ctx context.Context, taskID string, to lifecycle.Status) error
}

// Report summarizes one reconcile cycle.
type Report struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// Reconciler polls the mailbox and transitions replied leads.
type Reconciler struct {
	dialer Dialer
	finder Finder
	bus    events.Bus
	log    *logger.Logger
}

func New(dialer Dialer, finder Finder, bus events.Bus, log *logger.Logger) *Reconciler {
	return &Reconciler{
		dialer: dialer,
		finder: finder,
		bus:    bus,
		log:    log,
	}
}

// Reconcile processes every unseen message in the inbox. Mailbox
// connectivity failure aborts the whole cycle; per-message board
// failures do not, and each match is committed immediately so a later
// failure cannot roll back earlier ones.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	session, err := r.dialer.Dial()
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = session.Close() }()

	messages, err := session.Unseen()
	if err != nil {
		return Report{}, err
	}
	r.log.Info("reconcile starting", "unseen", len(messages))

	var report Report
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		// Seen first. A message that fails matching must not be retried
		// forever on every cycle.
		if err := session.MarkSeen(msg.UID); err != nil {
			return report, err
		}

		if msg.From == "" {
			report.Unmatched++
			continue
		}

		ref, err := r.finder.FindTaskByEmail(ctx, msg.From)
		if err != nil {
			r.log.BoardError("find task for reply from "+msg.From, err)
			report.Unmatched++
			continue
		}
		if ref == nil {
			report.Unmatched++
			continue
		}

		if !lifecycle.CanTransition(ref.Status, lifecycle.StatusReplied) {
			// A reply from a lead we never emailed. Leave its status alone.
			r.log.Warn("reply from lead not in SENT",
				"from", msg.From, "clinic", ref.ClinicName, "status", string(ref.Status))
			report.Unmatched++
			continue
		}

		if err := r.finder.MoveStatus(ctx, ref.TaskID, lifecycle.StatusReplied); err != nil {
			r.log.BoardError("move replied task "+ref.TaskID, err)
			report.Unmatched++
			continue
		}

		r.log.Info("reply matched", "from", msg.From, "clinic", ref.ClinicName, "task_id", ref.TaskID)
		r.bus.Publish(ctx, domevents.NewReplyMatched(msg.From, ref.ClinicName, ref.TaskID))
		report.Matched++
	}

	r.log.Info("reconcile finished", "matched", report.Matched, "unmatched", report.Unmatched)
	return report, nil
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func() (Session, error)

func (f DialerFunc) Dial() (Session, error) { return f() }

// Package events defines the domain events published on the in-process
// bus. Subscribers (the operator notifier, mainly) react to batch
// outcomes without the engine knowing who listens.
package events

import "outreach_backend/platform/events"

// Event type names.
const (
	TypeImportCompleted = "leads.import_completed"
	TypeBatchSent       = "leads.batch_sent"
	TypeReplyMatched    = "leads.reply_matched"
)

// ImportCompleted is published after an import run finishes, successful
// or not per-lead; the counts tell the whole story.
type ImportCompleted struct {
	events.BaseEvent
	Region  string
	Found   int
	Created int
	Skipped int
}

// EventName returns the event type identifier.
func (ImportCompleted) EventName() string { return TypeImportCompleted }

func NewImportCompleted(region string, found, created, skipped int) ImportCompleted {
	return ImportCompleted{
		BaseEvent: events.NewBaseEvent(),
		Region:    region,
		Found:     found,
		Created:   created,
		Skipped:   skipped,
	}
}

// BatchSent is published after a send batch finishes.
type BatchSent struct {
	events.BaseEvent
	Region         string
	Sent           int
	Invalid        int
	SkippedNoEmail int
	FailedSend     int
	RemainingReady int
}

// EventName returns the event type identifier.
func (BatchSent) EventName() string { return TypeBatchSent }

func NewBatchSent(region string, sent, invalid, skippedNoEmail, failedSend, remainingReady int) BatchSent {
	return BatchSent{
		BaseEvent:      events.NewBaseEvent(),
		Region:         region,
		Sent:           sent,
		Invalid:        invalid,
		SkippedNoEmail: skippedNoEmail,
		FailedSend:     failedSend,
		RemainingReady: remainingReady,
	}
}

// ReplyMatched is published for each inbound reply matched to a task.
type ReplyMatched struct {
	events.BaseEvent
	Sender     string
	ClinicName string
	TaskID     string
}

// EventName returns the event type identifier.
func (ReplyMatched) EventName() string { return TypeReplyMatched }

func NewReplyMatched(sender, clinicName, taskID string) ReplyMatched {
	return ReplyMatched{
		BaseEvent:  events.NewBaseEvent(),
		Sender:     sender,
		ClinicName: clinicName,
		TaskID:     taskID,
	}
}

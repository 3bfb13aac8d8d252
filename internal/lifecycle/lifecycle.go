// Package lifecycle provides core business rules for lead progression.
// The canonical status vocabulary is shared by every board list and the
// transition table is the single authority on which moves are legal.
package lifecycle

import "strings"

// Status is a lead's lifecycle state, stored as the board's native
// status string on the lead's task.
type Status string

const (
	// StatusNew marks a lead whose email enrichment is still pending.
	StatusNew Status = "NEW"
	// StatusReady marks a lead with a usable email, awaiting send.
	StatusReady Status = "READY"
	// StatusSent marks a lead whose proposal email was dispatched.
	StatusSent Status = "SENT"
	// StatusInvalid marks a lead whose email failed validation. Terminal;
	// never sent, never retried automatically.
	StatusInvalid Status = "INVALID"
	// StatusReplied marks a lead that answered. Terminal success,
	// reachable only from SENT.
	StatusReplied Status = "REPLIED"
)

// Canonical returns the status vocabulary in schema order. Every board
// list must carry at least these statuses, or the adapter degrades.
func Canonical() []Status {
	return []Status{StatusNew, StatusReady, StatusSent, StatusInvalid, StatusReplied}
}

// Parse maps a board status string onto the canonical vocabulary.
// Board APIs are inconsistent about casing, so matching is case-insensitive.
func Parse(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusNew, StatusReady, StatusSent, StatusInvalid, StatusReplied:
		return s, true
	}
	return "", false
}

// transitions holds the legal moves. A status absent from the map is
// terminal. Self-moves are always allowed; status writes are idempotent.
var transitions = map[Status]map[Status]bool{
	StatusNew: {
		StatusReady: true, // operator supplied an email
	},
	StatusReady: {
		StatusSent:    true, // send succeeded
		StatusInvalid: true, // email failed validation
	},
	StatusSent: {
		StatusReplied: true, // matching reply observed
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return transitions[from][to]
}

// IsTerminal returns true for statuses with no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ForNewLead returns the creation status: READY when the email is already
// known, NEW when enrichment is still pending.
func ForNewLead(hasEmail bool) Status {
	if hasEmail {
		return StatusReady
	}
	return StatusNew
}

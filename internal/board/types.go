// Package board talks to the external project board that acts as the
// system of record for leads. It owns list creation, status-schema
// enforcement, custom-field provisioning with quota fallback, and task CRUD.
package board

import "outreach_backend/internal/lifecycle"

// Lead is a prospective clinic as handed to the adapter for task creation.
// After the task exists only status and email ever change.
type Lead struct {
	Name     string
	Website  string
	Phone    string
	Address  string
	City     string
	Email    string
	Source   string
	Category string
}

// FieldRef points at a provisioned board custom field. Available is false
// when the board refused to create the field (plan quota); callers branch
// on availability instead of treating a missing id as null.
type FieldRef struct {
	ID        string
	Available bool
}

// List is one board container, one per region.
type List struct {
	Region   string
	ID       string
	Name     string
	Statuses []string
	Fields   map[string]FieldRef
}

// HasField reports whether a logical field is provisioned and usable.
func (l List) HasField(name string) bool {
	ref, ok := l.Fields[name]
	return ok && ref.Available
}

// Task is the board's representation of a Lead, owned exclusively by this
// adapter once created.
type Task struct {
	ID          string
	Name        string
	Status      lifecycle.Status
	RawStatus   string
	Email       string
	Website     string
	Phone       string
	Address     string
	City        string
	Description string
}

// TaskRef is the result of an email lookup: just enough to move a task
// and tell the operator which clinic replied.
type TaskRef struct {
	TaskID     string
	ClinicName string
	ListID     string
	Status     lifecycle.Status
}

// RegionStats summarizes a region's list for the operator.
type RegionStats struct {
	Region    string `json:"region"`
	Total     int    `json:"total"`
	New       int    `json:"new"`
	Ready     int    `json:"ready"`
	Sent      int    `json:"sent"`
	Invalid   int    `json:"invalid"`
	Replied   int    `json:"replied"`
	WithEmail int    `json:"withEmail"`
	NoEmail   int    `json:"noEmail"`
}

// Canonical custom fields provisioned on every list. Email and Website
// feed the send path; the social fields are operator conveniences.
const (
	FieldEmail     = "Email"
	FieldWebsite   = "Website"
	FieldFacebook  = "Facebook"
	FieldInstagram = "Instagram"
	FieldLinkedIn  = "LinkedIn"
)

// CanonicalFields lists the custom fields in provisioning order.
func CanonicalFields() []string {
	return []string{FieldEmail, FieldWebsite, FieldFacebook, FieldInstagram, FieldLinkedIn}
}

// ListPrefix is how region lists are named on the board.
const ListPrefix = "LEADS-"

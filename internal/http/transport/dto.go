// Package transport defines the HTTP request and response shapes for the
// operator API.
package transport

// ImportRequest triggers a discovery import for one region.
type ImportRequest struct {
	Region string `json:"region" validate:"required,region"`
	Async  bool   `json:"async"`
}

// SendRequest triggers a proposal send batch for one region.
type SendRequest struct {
	Region string `json:"region" validate:"required,region"`
	Limit  int    `json:"limit" validate:"omitempty,gt=0,lte=500"`
	Async  bool   `json:"async"`
}

// AddLeadRequest creates one operator-supplied lead.
type AddLeadRequest struct {
	Region  string `json:"region" validate:"required,region"`
	Name    string `json:"name" validate:"required,max=200"`
	Website string `json:"website" validate:"omitempty,max=500"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=500"`
	City    string `json:"city" validate:"omitempty,max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// AddLeadResponse returns the created task.
type AddLeadResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// QueuedResponse acknowledges an async batch submission.
type QueuedResponse struct {
	Queued bool   `json:"queued"`
	Region string `json:"region"`
}

// DefaultSendLimit applies when a send request leaves limit unset.
const DefaultSendLimit = 50

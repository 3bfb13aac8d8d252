package board

import (
	"encoding/json"
	"regexp"
	"strings"
)

// wireStatus tolerates both shapes the board returns for a task status:
// a bare string ("open") and an object ({"status": "open", ...}).
type wireStatus struct {
	Value string
}

func (s *wireStatus) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		s.Value = asString
		return nil
	}

	var asObject struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		// Unknown shape; leave the status empty rather than failing the
		// whole task read.
		s.Value = ""
		return nil
	}
	s.Value = asObject.Status
	return nil
}

// Labelled lines in a task's free-text description, e.g. "Email: a@b.com".
// Used when the corresponding custom field is unavailable.
var (
	emailLineRe   = regexp.MustCompile(`(?im)^\s*Email:?\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	websiteLineRe = regexp.MustCompile(`(?im)^\s*Website:?\s*(\S+)`)
)

// ExtractEmail pulls an email out of a description's "Email:" line.
// Returns "" when no labelled email is present.
func ExtractEmail(description string) string {
	m := emailLineRe.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractWebsite pulls a website out of a description's "Website:" line.
func ExtractWebsite(description string) string {
	m := websiteLineRe.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// DiscoverableEmail returns the task's email from the custom field when
// set, else parsed from the description. An operator who hand-edits the
// description away from the "Email:" label degrades this to "" silently;
// that tolerance is deliberate, the caller counts the task as skipped.
func (t Task) DiscoverableEmail() string {
	if t.Email != "" {
		return t.Email
	}
	return ExtractEmail(t.Description)
}

// fieldAliases maps the human-readable custom field names the board may
// carry onto logical names. Lists provisioned elsewhere use looser naming.
var fieldAliases = map[string]string{
	"email":        FieldEmail,
	"e-mail":       FieldEmail,
	"mail":         FieldEmail,
	"website":      FieldWebsite,
	"site":         FieldWebsite,
	"web":          FieldWebsite,
	"facebook":     FieldFacebook,
	"instagram":    FieldInstagram,
	"linkedin":     FieldLinkedIn,
	"phone":        "Phone",
	"phone number": "Phone",
	"city":         "City",
}

// logicalFieldName resolves a board field name to its logical name,
// or "" when the field is not one we track.
func logicalFieldName(boardName string) string {
	return fieldAliases[strings.ToLower(strings.TrimSpace(boardName))]
}

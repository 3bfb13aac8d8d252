package board

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"outreach_backend/internal/lifecycle"
	"outreach_backend/platform/apperr"
)

type wireTask struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       wireStatus `json:"status"`
	Description  string     `json:"description"`
	CustomFields []struct {
		ID    string      `json:"id"`
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	} `json:"custom_fields"`
}

type tasksResponse struct {
	Tasks    []wireTask `json:"tasks"`
	LastPage bool       `json:"last_page"`
}

// CreateTask creates a board task for a lead on the given list. On schema
// or quota rejections it retries with progressively less: first without
// the explicit status (the board assigns its default), then without custom
// fields (everything the send path needs survives in the description's
// labelled lines). Any other error fails the call.
func (c *Client) CreateTask(ctx context.Context, list List, lead Lead) (Task, error) {
	status := lifecycle.ForNewLead(lead.Email != "")
	description := describeLead(lead)

	withStatus := true
	withFields := true
	for {
		payload := map[string]interface{}{
			"name":        lead.Name,
			"description": description,
		}
		if withStatus {
			payload["status"] = string(status)
		}
		if withFields {
			if fields := customFieldValues(list, lead); len(fields) > 0 {
				payload["custom_fields"] = fields
			}
		}

		var created wireTask
		err := c.do(ctx, "POST", "/list/"+list.ID+"/task", payload, &created)
		switch {
		case err == nil:
			return taskFromWire(created, list), nil
		case withStatus && apperr.Is(err, apperr.KindSchemaConflict):
			c.log.BoardWarn("create task with status "+string(status), err)
			withStatus = false
		case withFields && apperr.Is(err, apperr.KindQuotaExceeded):
			c.log.BoardWarn("create task with custom fields", err)
			withFields = false
		default:
			return Task{}, err
		}
	}
}

// MoveStatus sets a task's board status. A schema conflict means the list
// lost its canonical statuses out-of-band; the move is logged and dropped
// rather than failing the batch, so one misconfigured list cannot wedge a
// send run.
func (c *Client) MoveStatus(ctx context.Context, taskID string, to lifecycle.Status) error {
	payload := map[string]interface{}{
		"status": string(to),
	}
	err := c.do(ctx, "PUT", "/task/"+taskID, payload, nil)
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.KindSchemaConflict) {
		c.log.BoardWarn("move task "+taskID+" to "+string(to), err)
		return nil
	}
	return err
}

// ListTasks pages through every task on a list.
func (c *Client) ListTasks(ctx context.Context, list List) ([]Task, error) {
	var out []Task
	for page := 0; ; page++ {
		var resp tasksResponse
		path := fmt.Sprintf("/list/%s/task?page=%d", list.ID, page)
		if err := c.do(ctx, "GET", path, nil, &resp); err != nil {
			return nil, err
		}
		for _, wire := range resp.Tasks {
			out = append(out, taskFromWire(wire, list))
		}
		if resp.LastPage || len(resp.Tasks) == 0 {
			break
		}
	}
	return out, nil
}

// SetField writes one custom field value on a task.
func (c *Client) SetField(ctx context.Context, taskID, fieldID string, value string) error {
	payload := map[string]interface{}{
		"value": value,
	}
	return c.do(ctx, "POST", fmt.Sprintf("/task/%s/field/%s", taskID, fieldID), payload, nil)
}

// SetEmail records an operator-discovered email on a task, preferring the
// custom field and falling back to a description line when the field was
// never provisioned.
func (c *Client) SetEmail(ctx context.Context, list List, task Task, email string) error {
	if list.HasField(FieldEmail) {
		return c.SetField(ctx, task.ID, list.Fields[FieldEmail].ID, email)
	}

	description := task.Description
	if description != "" && !strings.HasSuffix(description, "\n") {
		description += "\n"
	}
	description += "Email: " + email
	payload := map[string]interface{}{
		"description": description,
	}
	return c.do(ctx, "PUT", "/task/"+task.ID, payload, nil)
}

func taskFromWire(wire wireTask, list List) Task {
	task := Task{
		ID:          wire.ID,
		Name:        wire.Name,
		RawStatus:   wire.Status.Value,
		Description: wire.Description,
	}
	if s, ok := lifecycle.Parse(wire.Status.Value); ok {
		task.Status = s
	}

	// Resolve custom field values by id against the list's provisioned
	// fields, falling back to name aliases for fields created out-of-band.
	idToLogical := make(map[string]string, len(list.Fields))
	for logical, ref := range list.Fields {
		if ref.ID != "" {
			idToLogical[ref.ID] = logical
		}
	}
	for _, f := range wire.CustomFields {
		value := fieldValueString(f.Value)
		if value == "" {
			continue
		}
		logical := idToLogical[f.ID]
		if logical == "" {
			logical = logicalFieldName(f.Name)
		}
		switch logical {
		case FieldEmail:
			task.Email = value
		case FieldWebsite:
			task.Website = value
		case "Phone":
			task.Phone = value
		case "City":
			task.City = value
		}
	}

	if task.Website == "" {
		task.Website = ExtractWebsite(task.Description)
	}
	return task
}

// fieldValueString flattens the board's loosely typed field values.
func fieldValueString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// customFieldValues builds the custom field payload for task creation,
// restricted to fields the list actually has available.
func customFieldValues(list List, lead Lead) []map[string]interface{} {
	var fields []map[string]interface{}
	add := func(name, value string) {
		if value == "" || !list.HasField(name) {
			return
		}
		fields = append(fields, map[string]interface{}{
			"id":    list.Fields[name].ID,
			"value": value,
		})
	}
	add(FieldEmail, lead.Email)
	add(FieldWebsite, lead.Website)
	return fields
}

// describeLead renders a lead as labelled description lines. The send and
// reconcile paths parse these lines back out when custom fields are
// unavailable, so the labels are part of the task's contract, not cosmetic.
func describeLead(lead Lead) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	line("Website", lead.Website)
	line("Email", lead.Email)
	line("Phone", lead.Phone)
	line("Address", lead.Address)
	line("City", lead.City)
	line("Category", lead.Category)
	line("Source", lead.Source)
	return strings.TrimSuffix(b.String(), "\n")
}

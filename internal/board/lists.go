package board

import (
	"context"
	"fmt"
	"strings"

	"outreach_backend/internal/lifecycle"
	"outreach_backend/platform/apperr"
)

type wireList struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Statuses []struct {
		Status string `json:"status"`
	} `json:"statuses"`
}

type listsResponse struct {
	Lists []wireList `json:"lists"`
}

type wireField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type fieldsResponse struct {
	Fields []wireField `json:"fields"`
}

// ListName returns the deterministic board name for a region's list.
func ListName(region string) string {
	return ListPrefix + strings.ToUpper(strings.TrimSpace(region))
}

// GetOrCreateList looks up the region's list by its deterministic name and
// creates it on a miss. Either way the status schema is re-verified and the
// canonical custom fields re-checked, since both may drift out-of-band.
// Schema enforcement and field provisioning are best-effort: a schema
// rejection or field quota leaves the list usable in degraded form.
func (c *Client) GetOrCreateList(ctx context.Context, region string) (List, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return List{}, apperr.Validation("region is required")
	}
	name := ListName(region)

	existing, err := c.findListByName(ctx, name)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return List{}, err
	}

	var wire wireList
	if err == nil {
		wire = existing
	} else {
		wire, err = c.createList(ctx, region, name)
		if err != nil {
			return List{}, err
		}
	}

	list := List{
		Region: region,
		ID:     wire.ID,
		Name:   wire.Name,
	}
	for _, s := range wire.Statuses {
		list.Statuses = append(list.Statuses, s.Status)
	}

	c.ensureStatusSchema(ctx, &list)

	fields, err := c.provisionFields(ctx, list.ID)
	if err != nil {
		return List{}, err
	}
	list.Fields = fields

	return list, nil
}

// ListLists returns the raw region lists in the space.
func (c *Client) ListLists(ctx context.Context) ([]List, error) {
	var resp listsResponse
	if err := c.do(ctx, "GET", fmt.Sprintf("/space/%s/list", c.spaceID), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]List, 0, len(resp.Lists))
	for _, wire := range resp.Lists {
		if !strings.HasPrefix(wire.Name, ListPrefix) {
			continue
		}
		l := List{
			Region: strings.TrimPrefix(wire.Name, ListPrefix),
			ID:     wire.ID,
			Name:   wire.Name,
		}
		for _, s := range wire.Statuses {
			l.Statuses = append(l.Statuses, s.Status)
		}
		out = append(out, l)
	}
	return out, nil
}

func (c *Client) findListByName(ctx context.Context, name string) (wireList, error) {
	var resp listsResponse
	if err := c.do(ctx, "GET", fmt.Sprintf("/space/%s/list", c.spaceID), nil, &resp); err != nil {
		return wireList{}, err
	}
	for _, l := range resp.Lists {
		if l.Name == name {
			return l, nil
		}
	}
	return wireList{}, apperr.NotFound("list " + name + " not found")
}

func (c *Client) createList(ctx context.Context, region, name string) (wireList, error) {
	payload := map[string]interface{}{
		"name":    name,
		"content": "Leads for region " + region,
	}
	var created wireList
	if err := c.do(ctx, "POST", fmt.Sprintf("/space/%s/list", c.spaceID), payload, &created); err != nil {
		return wireList{}, err
	}
	if created.ID == "" {
		return wireList{}, apperr.Internal("board did not return a list id")
	}
	c.log.Info("board list created", "region", region, "list_id", created.ID)
	return created, nil
}

// ensureStatusSchema pushes the canonical status set onto the list when it
// is missing any canonical status. A schema rejection degrades the list
// (tasks fall back to the board's default status) but never fails it; the
// list's existence does not depend on its schema.
func (c *Client) ensureStatusSchema(ctx context.Context, list *List) {
	if hasCanonicalStatuses(list.Statuses) {
		return
	}

	statuses := make([]map[string]interface{}, 0, len(lifecycle.Canonical()))
	for i, s := range lifecycle.Canonical() {
		statuses = append(statuses, map[string]interface{}{
			"status":     string(s),
			"orderindex": i,
		})
	}
	payload := map[string]interface{}{
		"name":     list.Name,
		"statuses": statuses,
	}

	if err := c.do(ctx, "PUT", "/list/"+list.ID, payload, nil); err != nil {
		c.log.BoardWarn("ensure status schema", err)
		return
	}
	list.Statuses = list.Statuses[:0]
	for _, s := range lifecycle.Canonical() {
		list.Statuses = append(list.Statuses, string(s))
	}
}

func hasCanonicalStatuses(statuses []string) bool {
	present := make(map[lifecycle.Status]bool, len(statuses))
	for _, raw := range statuses {
		if s, ok := lifecycle.Parse(raw); ok {
			present[s] = true
		}
	}
	for _, s := range lifecycle.Canonical() {
		if !present[s] {
			return false
		}
	}
	return true
}

// provisionFields reads the list's custom fields and creates any missing
// canonical ones. A quota rejection marks the field Unavailable and moves
// on; every other creation error is also tolerated, since field presence
// is a convenience, not a correctness requirement.
func (c *Client) provisionFields(ctx context.Context, listID string) (map[string]FieldRef, error) {
	existing, err := c.listFields(ctx, listID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]FieldRef, len(CanonicalFields()))
	for name, id := range existing {
		fields[name] = FieldRef{ID: id, Available: true}
	}

	quotaHit := false
	for _, name := range CanonicalFields() {
		if _, ok := fields[name]; ok {
			continue
		}
		if quotaHit {
			fields[name] = FieldRef{}
			continue
		}

		id, err := c.createField(ctx, listID, name)
		switch {
		case err == nil:
			fields[name] = FieldRef{ID: id, Available: true}
		case apperr.Is(err, apperr.KindQuotaExceeded):
			c.log.BoardWarn("create field "+name, err)
			fields[name] = FieldRef{}
			quotaHit = true
		default:
			c.log.BoardWarn("create field "+name, err)
			fields[name] = FieldRef{}
		}
	}

	return fields, nil
}

// listFields maps logical field names to board field ids for a list.
func (c *Client) listFields(ctx context.Context, listID string) (map[string]string, error) {
	var resp fieldsResponse
	if err := c.do(ctx, "GET", "/list/"+listID+"/field", nil, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, f := range resp.Fields {
		if f.ID == "" {
			continue
		}
		if logical := logicalFieldName(f.Name); logical != "" {
			out[logical] = f.ID
		}
	}
	return out, nil
}

func (c *Client) createField(ctx context.Context, listID, name string) (string, error) {
	payload := map[string]interface{}{
		"name": name,
		"type": "text",
	}
	var created struct {
		ID string `json:"id"`
		Field struct {
			ID string `json:"id"`
		} `json:"field"`
	}
	if err := c.do(ctx, "POST", "/list/"+listID+"/field", payload, &created); err != nil {
		return "", err
	}
	id := created.ID
	if id == "" {
		id = created.Field.ID
	}
	if id == "" {
		return "", apperr.Internal("board did not return a field id")
	}
	return id, nil
}

package board

import (
	"context"
	"strings"

	"outreach_backend/internal/lifecycle"
)

// FindTaskByEmail scans every region list for a task whose discoverable
// email matches the sender, case-insensitively. Returns (nil, nil) when no
// task matches; a reply from an unknown sender is not an error. A linear
// scan is acceptable at the board sizes this system operates on, and it
// is the only lookup the board API offers without a search index.
func (c *Client) FindTaskByEmail(ctx context.Context, email string) (*TaskRef, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	lists, err := c.ListLists(ctx)
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		fields, err := c.listFields(ctx, list.ID)
		if err != nil {
			c.log.BoardWarn("list fields for "+list.Name, err)
			fields = nil
		}
		list.Fields = make(map[string]FieldRef, len(fields))
		for name, id := range fields {
			list.Fields[name] = FieldRef{ID: id, Available: true}
		}

		tasks, err := c.ListTasks(ctx, list)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if strings.EqualFold(task.DiscoverableEmail(), email) {
				return &TaskRef{
					TaskID:     task.ID,
					ClinicName: task.Name,
					ListID:     list.ID,
					Status:     task.Status,
				}, nil
			}
		}
	}
	return nil, nil
}

// Stats summarizes one region's list by lifecycle status and email
// availability.
func (c *Client) Stats(ctx context.Context, region string) (RegionStats, error) {
	list, err := c.GetOrCreateList(ctx, region)
	if err != nil {
		return RegionStats{}, err
	}

	tasks, err := c.ListTasks(ctx, list)
	if err != nil {
		return RegionStats{}, err
	}

	stats := RegionStats{
		Region: list.Region,
		Total:  len(tasks),
	}
	for _, task := range tasks {
		switch task.Status {
		case lifecycle.StatusNew:
			stats.New++
		case lifecycle.StatusReady:
			stats.Ready++
		case lifecycle.StatusSent:
			stats.Sent++
		case lifecycle.StatusInvalid:
			stats.Invalid++
		case lifecycle.StatusReplied:
			stats.Replied++
		}
		if task.DiscoverableEmail() != "" {
			stats.WithEmail++
		} else {
			stats.NoEmail++
		}
	}
	return stats, nil
}

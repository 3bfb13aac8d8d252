package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskImportRegion = "leads.import_region"

const TaskSendBatch = "leads.send_batch"

const TaskReconcileReplies = "replies.reconcile"

type ImportRegionPayload struct {
	Region string `json:"region"`
}

type SendBatchPayload struct {
	Region string `json:"region"`
	Limit  int    `json:"limit"`
}

func NewImportRegionTask(payload ImportRegionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImportRegion, data), nil
}

func ParseImportRegionPayload(task *asynq.Task) (ImportRegionPayload, error) {
	var payload ImportRegionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ImportRegionPayload{}, err
	}
	return payload, nil
}

func NewSendBatchTask(payload SendBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendBatch, data), nil
}

func ParseSendBatchPayload(task *asynq.Task) (SendBatchPayload, error) {
	var payload SendBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SendBatchPayload{}, err
	}
	return payload, nil
}

// NewReconcileRepliesTask needs no payload; the whole inbox is one unit.
func NewReconcileRepliesTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileReplies, nil)
}

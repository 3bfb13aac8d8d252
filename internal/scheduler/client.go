// Package scheduler runs batch operations through asynq so long imports
// and send runs happen off the request path, and drives the periodic
// reply reconcile.
package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"outreach_backend/platform/config"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// BatchScheduler enqueues batch operations for background execution.
type BatchScheduler interface {
	EnqueueImportRegion(ctx context.Context, payload ImportRegionPayload) error
	EnqueueSendBatch(ctx context.Context, payload SendBatchPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueImportRegion(ctx context.Context, payload ImportRegionPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewImportRegionTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func (c *Client) EnqueueSendBatch(ctx context.Context, payload SendBatchPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewSendBatchTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

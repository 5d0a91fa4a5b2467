package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/platform/cache"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// refreshDedupWindow collapses bursts of refresh requests for one tenant.
const refreshDedupWindow = time.Minute

type Client struct {
	client *asynq.Client
	queue  string
}

// RefreshEnqueuer queues summary refreshes.
type RefreshEnqueuer interface {
	EnqueueSummaryRefresh(ctx context.Context, tenantID uuid.UUID) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSummaryRefresh queues a refresh. A refresh already pending for the
// tenant within the dedup window is not duplicated.
func (c *Client) EnqueueSummaryRefresh(ctx context.Context, tenantID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewSummaryRefreshTask(tenantID)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(refreshDedupWindow), asynq.MaxRetry(3))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := cache.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

var _ RefreshEnqueuer = (*Client)(nil)

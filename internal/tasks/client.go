package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"contentos/internal/metrics"
	"contentos/internal/tasks/rate"
	"contentos/internal/utils/logger"
)

// ErrRateLimited is returned when a workspace exhausts its enqueue window
// for a model-backed queue.
var ErrRateLimited = errors.New("workspace job rate limit exceeded")

// TaskClient is the producer-side handle: it enqueues typed jobs and
// applies per-workspace rate limits to the AI-backed queues.
type TaskClient struct {
	client      *asynq.Client
	redisClient *redis.Client
	limiters    map[string]*rate.WorkspaceLimiter
	logger      *logger.Logger
}

// NewTaskClient creates a new TaskClient with the given Redis configuration.
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	})

	limiters := make(map[string]*rate.WorkspaceLimiter)
	for _, queue := range []string{QueueGenerate, QueueURLScan, QueueShorts} {
		limiters[queue] = rate.NewWorkspaceLimiter(redisClient, queue, rate.DefaultAILimit)
	}

	return &TaskClient{
		client:      asynq.NewClient(redisOpt),
		redisClient: redisClient,
		limiters:    limiters,
		logger:      logger.New("TASKS"),
	}
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// Close closes the underlying asynq and redis clients.
func (c *TaskClient) Close() error {
	if err := c.client.Close(); err != nil {
		return err
	}
	return c.redisClient.Close()
}

func (c *TaskClient) enqueue(ctx context.Context, taskType, queue string, payload interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, c.logger.Error("failed to marshal task payload", err)
	}

	opts = append([]asynq.Option{asynq.Queue(queue)}, opts...)
	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return nil, c.logger.Error("failed to enqueue task", err)
	}

	metrics.JobsEnqueued.WithLabelValues(queue).Inc()
	c.logger.Info("enqueued %s id=%s queue=%s", taskType, info.ID, info.Queue)
	return info, nil
}

func (c *TaskClient) allow(ctx context.Context, queue, workspaceID string) error {
	limiter, ok := c.limiters[queue]
	if !ok {
		return nil
	}
	allowed, err := limiter.Allow(ctx, workspaceID)
	if err != nil {
		// Redis hiccups should not block producers.
		c.logger.Warn("rate limiter unavailable for %s: %v", queue, err)
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

// EnqueuePlan schedules slot creation for the coming days.
func (c *TaskClient) EnqueuePlan(ctx context.Context, p PlanPayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypePlan, QueuePlan, p,
		asynq.MaxRetry(RetryLocal), asynq.Timeout(TimeoutShort))
}

// EnqueueGenerate schedules viral text generation.
func (c *TaskClient) EnqueueGenerate(ctx context.Context, p GeneratePayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.allow(ctx, QueueGenerate, p.WorkspaceID); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypeGenerate, QueueGenerate, p,
		asynq.MaxRetry(RetryExternal), asynq.Timeout(TimeoutLong))
}

// EnqueueURLScan schedules article scanning and post generation.
func (c *TaskClient) EnqueueURLScan(ctx context.Context, p URLScanPayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.allow(ctx, QueueURLScan, p.WorkspaceID); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypeURLScan, QueueURLScan, p,
		asynq.MaxRetry(RetryExternal), asynq.Timeout(TimeoutLong))
}

// EnqueueShorts schedules short-form script generation.
func (c *TaskClient) EnqueueShorts(ctx context.Context, p ShortsPayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.allow(ctx, QueueShorts, p.WorkspaceID); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypeShorts, QueueShorts, p,
		asynq.MaxRetry(RetryExternal), asynq.Timeout(TimeoutLong))
}

// EnqueueAuthorityImage schedules quote-image rendering.
func (c *TaskClient) EnqueueAuthorityImage(ctx context.Context, p AuthorityImagePayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypeAuthorityImage, QueueAuthorityImage, p,
		asynq.MaxRetry(RetryLocal), asynq.Timeout(TimeoutShort))
}

// EnqueuePublish schedules an immediate publish of one post.
func (c *TaskClient) EnqueuePublish(ctx context.Context, p PublishPayload) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypePublish, QueuePublish, p,
		asynq.MaxRetry(RetryExternal), asynq.Timeout(TimeoutShort))
}

// EnqueuePublishAt schedules a publish for a future point in time.
func (c *TaskClient) EnqueuePublishAt(ctx context.Context, p PublishPayload, at time.Time) (*asynq.TaskInfo, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return c.enqueue(ctx, TypePublish, QueuePublish, p,
		asynq.MaxRetry(RetryExternal), asynq.Timeout(TimeoutShort), asynq.ProcessAt(at))
}

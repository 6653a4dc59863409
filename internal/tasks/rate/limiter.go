package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit is a sliding-window cap on jobs per workspace.
type Limit struct {
	Window  time.Duration
	MaxJobs int
}

// DefaultAILimit bounds how fast a single workspace can enqueue
// model-backed jobs.
var DefaultAILimit = Limit{Window: time.Minute, MaxJobs: 30}

// WorkspaceLimiter enforces a per-workspace job limit for one queue,
// backed by a Redis sorted set per (queue, workspace) pair.
type WorkspaceLimiter struct {
	redis *redis.Client
	queue string
	limit Limit
}

func NewWorkspaceLimiter(rdb *redis.Client, queue string, limit Limit) *WorkspaceLimiter {
	return &WorkspaceLimiter{
		redis: rdb,
		queue: queue,
		limit: limit,
	}
}

// Allow records an enqueue attempt and reports whether the workspace is
// still inside its window.
func (l *WorkspaceLimiter) Allow(ctx context.Context, workspaceID string) (bool, error) {
	key := fmt.Sprintf("queue_rate_limit:%s:%s", l.queue, workspaceID)

	pipe := l.redis.Pipeline()
	now := time.Now().Unix()
	windowStart := now - int64(l.limit.Window.Seconds())

	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, l.limit.Window*2)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	count := results[1].(*redis.IntCmd).Val()
	return count <= int64(l.limit.MaxJobs), nil
}

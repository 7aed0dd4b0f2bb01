package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kiralabs/launchpad/internal/models"
)

const (
	recentRunsKey  = "runs:recent"
	runKeyPrefix   = "runs:id:"
	liveRunChannel = "runs:live"

	maxRecentRuns = 100
)

// ErrRunNotFound means no run with the given id is cached.
var ErrRunNotFound = errors.New("history: run not found")

// RedisCache keeps a bounded list of recent workflow runs, a by-id lookup,
// and a live pub/sub feed.
type RedisCache struct {
	client redis.Cmdable
	closer func() error
	logger *logrus.Logger
}

// NewRedisCacheFromClient wraps an existing redis client.
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, closer: client.Close, logger: logger}
}

// AddRecentRun stores the run by id and pushes it onto the recent list,
// trimming to the retention bound.
func (r *RedisCache) AddRecentRun(ctx context.Context, run *models.RunEvent) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, runKeyPrefix+run.RunID, data, 0)
	pipe.LPush(ctx, recentRunsKey, data)
	pipe.LTrim(ctx, recentRunsKey, 0, maxRecentRuns-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

// GetRecentRuns returns up to limit most recent runs, newest first.
func (r *RedisCache) GetRecentRuns(ctx context.Context, limit int64) ([]*models.RunEvent, error) {
	if limit <= 0 || limit > maxRecentRuns {
		limit = maxRecentRuns
	}

	vals, err := r.client.LRange(ctx, recentRunsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}

	out := make([]*models.RunEvent, 0, len(vals))
	for _, v := range vals {
		var run models.RunEvent
		if err := json.Unmarshal([]byte(v), &run); err != nil {
			r.logger.WithError(err).Warn("skipping malformed run entry")
			continue
		}
		out = append(out, &run)
	}
	return out, nil
}

// GetRun returns one run by id.
func (r *RedisCache) GetRun(ctx context.Context, runID string) (*models.RunEvent, error) {
	val, err := r.client.Get(ctx, runKeyPrefix+runID).Result()
	if err == redis.Nil {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var run models.RunEvent
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// PublishRun publishes a run event on the live channel.
func (r *RedisCache) PublishRun(ctx context.Context, run *models.RunEvent) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return r.client.Publish(ctx, liveRunChannel, data).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

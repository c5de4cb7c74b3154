// Package queue provides the Redis-backed job queue that hands evidence
// analysis work from the API server to the worker processes.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis list the evidence jobs are pushed to.
const DefaultKey = "casebrief:evidence:jobs"

// Config holds the Redis connection settings for the queue
type Config struct {
	// URL is a redis:// connection string
	URL string
	// Key overrides DefaultKey when set
	Key string
}

// Queue is a Redis list acting as a FIFO job queue. BRPOP gives each job
// to exactly one of the competing workers.
type Queue struct {
	client *redis.Client
	key    string
}

// New creates a queue and verifies the Redis connection
func New(ctx context.Context, cfg Config) (*Queue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &Queue{client: client, key: key}, nil
}

// Enqueue pushes an evidence ID onto the queue
func (q *Queue) Enqueue(ctx context.Context, evidenceID uuid.UUID) error {
	if err := q.client.LPush(ctx, q.key, evidenceID.String()).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks until a job is available or the context is cancelled.
// The returned ID has been removed from the queue and belongs to the caller.
func (q *Queue) Dequeue(ctx context.Context) (uuid.UUID, error) {
	for {
		// A finite timeout keeps the loop responsive to ctx cancellation.
		res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if ctx.Err() != nil {
					return uuid.Nil, ctx.Err()
				}
				continue
			}
			return uuid.Nil, fmt.Errorf("failed to dequeue job: %w", err)
		}

		// BRPOP returns [key, value]
		id, err := uuid.Parse(res[1])
		if err != nil {
			return uuid.Nil, fmt.Errorf("malformed job payload %q: %w", res[1], err)
		}
		return id, nil
	}
}

// Len reports the number of pending jobs
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close closes the Redis connection
func (q *Queue) Close() error {
	return q.client.Close()
}

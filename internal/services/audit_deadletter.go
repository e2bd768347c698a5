package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// DeadLetterQueue holds audit entries whose write failed so they can be
// replayed into the store later.
type DeadLetterQueue interface {
	Push(ctx context.Context, entry *models.AuditLog) error
	// Pop removes the oldest entry. It returns nil, nil when the queue is empty.
	Pop(ctx context.Context) (*models.AuditLog, error)
	Len(ctx context.Context) (int64, error)
}

type redisDeadLetterQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRedisDeadLetterQueue stores dead letters as JSON in a Redis list.
func NewRedisDeadLetterQueue(client redis.UniversalClient, key string) DeadLetterQueue {
	return &redisDeadLetterQueue{client: client, key: key}
}

func (q *redisDeadLetterQueue) Push(ctx context.Context, entry *models.AuditLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *redisDeadLetterQueue) Pop(ctx context.Context) (*models.AuditLog, error) {
	payload, err := q.client.RPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry models.AuditLog
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("decode dead letter: %w", err)
	}
	return &entry, nil
}

func (q *redisDeadLetterQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// ReplayDeadLetters moves up to max entries (all when max <= 0) from dlq into
// store and returns how many were written. An entry that fails to write is
// pushed back and replay stops.
func ReplayDeadLetters(ctx context.Context, dlq DeadLetterQueue, store AuditStore, max int) (int, error) {
	replayed := 0
	for max <= 0 || replayed < max {
		entry, err := dlq.Pop(ctx)
		if err != nil {
			return replayed, err
		}
		if entry == nil {
			break
		}

		if err := store.Append(ctx, entry); err != nil {
			if pushErr := dlq.Push(ctx, entry); pushErr != nil {
				logger.Get().Errorw("failed to requeue audit dead letter",
					"audit_id", entry.ID,
					"action", entry.Action,
					"error", pushErr,
				)
				metrics.AuditDeadLettersTotal.WithLabelValues(metrics.DeadLetterFailed).Inc()
			}
			return replayed, fmt.Errorf("replay audit entry %s: %w", entry.ID, err)
		}

		metrics.AuditDeadLettersTotal.WithLabelValues(metrics.DeadLetterReplayed).Inc()
		metrics.AuditWritesTotal.WithLabelValues(string(entry.Action), metrics.ResultOK).Inc()
		replayed++
	}
	return replayed, nil
}

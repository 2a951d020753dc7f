package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

const defaultQueueKey = "notify:outbox"

// NotificationQueueRepo is a FIFO outbox on a Redis list: producers LPUSH,
// the worker BRPOPs. Items that exhaust their retries land on "<key>:dead".
type NotificationQueueRepo struct {
	client *goredis.Client
	key    string
}

func NewNotificationQueueRepo(client *goredis.Client, key string) *NotificationQueueRepo {
	if strings.TrimSpace(key) == "" {
		key = defaultQueueKey
	}
	return &NotificationQueueRepo{client: client, key: key}
}

func (r *NotificationQueueRepo) Enqueue(ctx context.Context, n model.Notification) error {
	return r.push(ctx, r.key, n)
}

func (r *NotificationQueueRepo) DeadLetter(ctx context.Context, n model.Notification) error {
	return r.push(ctx, r.key+":dead", n)
}

// Dequeue blocks up to timeout for the next item. ok is false when the wait
// timed out with an empty queue.
func (r *NotificationQueueRepo) Dequeue(ctx context.Context, timeout time.Duration) (model.Notification, bool, error) {
	if r.client == nil {
		return model.Notification{}, false, fmt.Errorf("redis client is nil")
	}

	res, err := r.client.BRPop(ctx, timeout, r.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.Notification{}, false, nil
		}
		return model.Notification{}, false, fmt.Errorf("pop notification: %w", err)
	}
	if len(res) != 2 {
		return model.Notification{}, false, fmt.Errorf("unexpected brpop reply length %d", len(res))
	}

	var n model.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return model.Notification{}, false, fmt.Errorf("decode notification: %w", err)
	}
	return n, true, nil
}

func (r *NotificationQueueRepo) Len(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

func (r *NotificationQueueRepo) push(ctx context.Context, key string, n model.Notification) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := r.client.LPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

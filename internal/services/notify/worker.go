package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/infra/push"
)

type Queue interface {
	Enqueue(ctx context.Context, n model.Notification) error
	Dequeue(ctx context.Context, timeout time.Duration) (model.Notification, bool, error)
	DeadLetter(ctx context.Context, n model.Notification) error
}

type UserLookup interface {
	DeviceToken(ctx context.Context, id string) (string, error)
	Name(ctx context.Context, id string) (string, error)
}

type WorkerConfig struct {
	RatePerSecond float64
	MaxAttempts   int
	PollTimeout   time.Duration
}

// Worker drains the outbox and delivers each item through the pusher,
// throttled to a fixed rate. Failed deliveries are re-queued until
// MaxAttempts, then dead-lettered.
type Worker struct {
	queue   Queue
	users   UserLookup
	pusher  push.Pusher
	limiter *rate.Limiter
	cfg     WorkerConfig
	logger  *zap.Logger
}

func NewWorker(queue Queue, users UserLookup, pusher push.Pusher, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	burst := int(cfg.RatePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Worker{
		queue:   queue,
		users:   users,
		pusher:  pusher,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
		cfg:     cfg,
		logger:  logger,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started", zap.Float64("rate_per_second", w.cfg.RatePerSecond))
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("notification worker iteration failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne handles at most one queued item. It reports whether an item
// was taken off the queue.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	n, ok, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		w.requeue(ctx, n, err)
		return true, nil
	}

	if err := w.deliver(ctx, n); err != nil {
		if errors.Is(err, push.ErrNoDevice) {
			w.logger.Debug("skip notification without device token", zap.String("recipient_id", n.RecipientID))
			return true, nil
		}
		w.requeue(ctx, n, err)
	}
	return true, nil
}

func (w *Worker) deliver(ctx context.Context, n model.Notification) error {
	token, err := w.users.DeviceToken(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("load device token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return push.ErrNoDevice
	}

	actorName, err := w.users.Name(ctx, n.ActorID)
	if err != nil || strings.TrimSpace(actorName) == "" {
		actorName = "Someone"
	}

	msg := ComposeMessage(n, actorName)
	return w.pusher.Push(ctx, token, msg)
}

func (w *Worker) requeue(ctx context.Context, n model.Notification, cause error) {
	n.Attempt++
	if n.Attempt >= w.cfg.MaxAttempts {
		w.logger.Warn("notification dropped after retries",
			zap.String("id", n.ID),
			zap.Int("attempts", n.Attempt),
			zap.Error(cause),
		)
		if err := w.queue.DeadLetter(ctx, n); err != nil {
			w.logger.Warn("dead letter notification failed", zap.String("id", n.ID), zap.Error(err))
		}
		return
	}
	if err := w.queue.Enqueue(ctx, n); err != nil {
		w.logger.Warn("requeue notification failed", zap.String("id", n.ID), zap.Error(err))
	}
}

// ComposeMessage renders the push title and body for a notification.
func ComposeMessage(n model.Notification, actorName string) push.Message {
	msg := push.Message{Data: n.Data}
	switch n.Kind {
	case model.NotificationMatch:
		msg.Title = "It's a match!"
		msg.Body = fmt.Sprintf("You and %s liked each other.", actorName)
	case model.NotificationSuperLike:
		msg.Title = "New super like"
		msg.Body = fmt.Sprintf("%s super liked you!", actorName)
	default:
		msg.Title = "New like"
		msg.Body = fmt.Sprintf("%s liked your profile.", actorName)
	}
	return msg
}

package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

const defaultEnqueueTimeout = 500 * time.Millisecond

type Enqueuer interface {
	Enqueue(ctx context.Context, n model.Notification) error
}

// Dispatcher puts notifications on the outbox. It never returns an error:
// delivery is a secondary effect of the swipe and must not change its
// outcome.
type Dispatcher struct {
	queue   Enqueuer
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewDispatcher(queue Enqueuer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: queue, logger: logger, now: time.Now, timeout: defaultEnqueueTimeout}
}

// MatchCreated notifies both parties of a new match.
func (d *Dispatcher) MatchCreated(ctx context.Context, match model.Match, actorID string) {
	for _, recipient := range []string{match.User1ID, match.User2ID} {
		d.enqueue(ctx, model.Notification{
			Kind:        model.NotificationMatch,
			RecipientID: recipient,
			ActorID:     match.Other(recipient),
			MatchID:     match.ID,
			Data: map[string]string{
				"type":    string(model.NotificationMatch),
				"matchId": match.ID,
				"userId":  match.Other(recipient),
			},
		})
	}
}

// Liked notifies the target of a like or superlike that did not match.
func (d *Dispatcher) Liked(ctx context.Context, actorID, targetID string, action enums.SwipeAction) {
	kind := model.NotificationLike
	if action == enums.SwipeActionSuperLike {
		kind = model.NotificationSuperLike
	}
	d.enqueue(ctx, model.Notification{
		Kind:        kind,
		RecipientID: targetID,
		ActorID:     actorID,
		Data: map[string]string{
			"type":   string(kind),
			"userId": actorID,
		},
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, n model.Notification) {
	if d == nil || d.queue == nil {
		return
	}
	n.ID = uuid.NewString()
	n.CreatedAt = d.now().UTC()
	// Each enqueue is bounded by its own deadline.
	enqueueCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.queue.Enqueue(enqueueCtx, n); err != nil {
		d.logger.Warn("enqueue notification failed",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
	}
}

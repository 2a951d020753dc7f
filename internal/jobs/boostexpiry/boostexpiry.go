package boostexpiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time, limit int) (int64, error)
}

// Job clears boost windows that ran out but were never observed by a read
// path. It loops over batches until one comes back short.
type Job struct {
	sweeper Sweeper
	batch   int
	now     func() time.Time
	logger  *zap.Logger
}

func New(sweeper Sweeper, batch int, logger *zap.Logger) *Job {
	if batch <= 0 {
		batch = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sweeper: sweeper,
		batch:   batch,
		now:     time.Now,
		logger:  logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}

	now := j.now().UTC()
	var total int64
	for {
		cleared, err := j.sweeper.SweepExpired(ctx, now, j.batch)
		if err != nil {
			return fmt.Errorf("sweep expired boosts: %w", err)
		}
		total += cleared
		if cleared < int64(j.batch) || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		j.logger.Info("boost expiry sweep completed", zap.Int64("cleared", total))
	}
	return nil
}

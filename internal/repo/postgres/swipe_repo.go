package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

var ErrSwipeUserNotFound = errors.New("swipe references a missing user")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert records the swiper's decision on target, overwriting any previous
// decision for the same ordered pair. The row id is stable across updates.
func (r *SwipeRepo) Upsert(ctx context.Context, swiperID, targetID string, action enums.SwipeAction, now time.Time) (model.Swipe, error) {
	if swiperID == "" || targetID == "" || action == "" {
		return model.Swipe{}, fmt.Errorf("invalid swipe payload")
	}
	if r.pool == nil {
		return model.Swipe{}, ErrNoPool
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		rec       model.Swipe
		rawAction string
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO swipes (id, swiper_id, target_id, action, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (swiper_id, target_id) DO UPDATE SET
	action = EXCLUDED.action,
	updated_at = EXCLUDED.updated_at
RETURNING id, swiper_id, target_id, action, created_at, updated_at
`, uuid.NewString(), swiperID, targetID, string(action), now.UTC()).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.TargetID,
		&rawAction,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return model.Swipe{}, ErrSwipeUserNotFound
		}
		return model.Swipe{}, fmt.Errorf("upsert swipe: %w", err)
	}
	rec.Action = enums.SwipeAction(rawAction)

	return rec, nil
}

// TargetsSwipedBy returns every user the swiper has decided on, any action.
func (r *SwipeRepo) TargetsSwipedBy(ctx context.Context, swiperID string) ([]string, error) {
	return r.listIDs(ctx, "targets swiped by", `
SELECT target_id
FROM swipes
WHERE swiper_id = $1
`, swiperID)
}

// SwipersWhoDisliked returns users whose current decision on target is a
// dislike.
func (r *SwipeRepo) SwipersWhoDisliked(ctx context.Context, targetID string) ([]string, error) {
	return r.listIDs(ctx, "dislikers of", `
SELECT swiper_id
FROM swipes
WHERE target_id = $1 AND action = 'dislike'
`, targetID)
}

// HasPositive reports whether swiper currently likes or superlikes target.
func (r *SwipeRepo) HasPositive(ctx context.Context, swiperID, targetID string) (bool, error) {
	if r.pool == nil {
		return false, ErrNoPool
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM swipes
	WHERE swiper_id = $1 AND target_id = $2 AND action IN ('like', 'superlike')
)
`, swiperID, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup reciprocal swipe: %w", err)
	}
	return exists, nil
}

// LikersOf pages through users who like or superlike target, most recent
// decision first.
func (r *SwipeRepo) LikersOf(ctx context.Context, targetID string, offset, limit int) ([]string, error) {
	return r.listIDs(ctx, "likers of", `
SELECT swiper_id
FROM swipes
WHERE target_id = $1 AND action IN ('like', 'superlike')
ORDER BY updated_at DESC, id DESC
OFFSET $2
LIMIT $3
`, targetID, max(offset, 0), limitOrDefault(limit))
}

// LikedBy pages through users the swiper likes or superlikes.
func (r *SwipeRepo) LikedBy(ctx context.Context, swiperID string, offset, limit int) ([]string, error) {
	return r.listIDs(ctx, "likes sent by", `
SELECT target_id
FROM swipes
WHERE swiper_id = $1 AND action IN ('like', 'superlike')
ORDER BY updated_at DESC, id DESC
OFFSET $2
LIMIT $3
`, swiperID, max(offset, 0), limitOrDefault(limit))
}

// LikedAmong returns the subset of candidateIDs the swiper likes or
// superlikes.
func (r *SwipeRepo) LikedAmong(ctx context.Context, swiperID string, candidateIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return out, nil
	}
	ids, err := r.listIDs(ctx, "liked among", `
SELECT target_id
FROM swipes
WHERE swiper_id = $1 AND target_id = ANY($2::text[]) AND action IN ('like', 'superlike')
`, swiperID, candidateIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *SwipeRepo) listIDs(ctx context.Context, what, query string, args ...any) ([]string, error) {
	if r.pool == nil {
		return nil, ErrNoPool
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", what, err)
	}
	return ids, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

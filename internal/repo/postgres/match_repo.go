package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

const matchColumns = `id, user1_id, user2_id, is_active, last_message_at, created_at`

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	err := row.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.IsActive, &m.LastMessageAt, &m.CreatedAt)
	return m, err
}

// Upsert creates the match for an unordered pair if it does not exist yet.
// created is true only for the call that inserted the row; every other call,
// from either ordering, reads back the same record.
func (r *MatchRepo) Upsert(ctx context.Context, userA, userB string, now time.Time) (model.Match, bool, error) {
	if userA == "" || userB == "" || userA == userB {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return model.Match{}, false, ErrNoPool
	}
	user1, user2 := rules.CanonicalPair(userA, userB)

	match, err := scanMatch(r.pool.QueryRow(ctx, `
INSERT INTO matches (id, user1_id, user2_id, is_active, created_at)
VALUES ($1, $2, $3, TRUE, $4)
ON CONFLICT (user1_id, user2_id) DO NOTHING
RETURNING `+matchColumns,
		uuid.NewString(), user1, user2, now.UTC(),
	))
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	match, err = r.FindByPair(ctx, user1, user2)
	if err != nil {
		return model.Match{}, false, err
	}
	return match, false, nil
}

func (r *MatchRepo) FindByPair(ctx context.Context, userA, userB string) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, ErrNoPool
	}
	user1, user2 := rules.CanonicalPair(userA, userB)
	match, err := scanMatch(r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE user1_id = $1 AND user2_id = $2
`, user1, user2))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("find match by pair: %w", err)
	}
	return match, nil
}

// ListActive pages through active matches involving userID, newest first.
func (r *MatchRepo) ListActive(ctx context.Context, userID string, offset, limit int) ([]model.Match, error) {
	if userID == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, ErrNoPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE (user1_id = $1 OR user2_id = $1) AND is_active
ORDER BY created_at DESC, id DESC
OFFSET $2
LIMIT $3
`, userID, max(offset, 0), limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limitOrDefault(limit))
	for rows.Next() {
		item, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}
	return items, nil
}

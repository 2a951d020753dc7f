package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

var ErrBoostTransactionSeen = errors.New("boost transaction already processed")

// BoostRepo owns the boost window columns of the users table. Every write is
// a single conditional UPDATE on one row.
type BoostRepo struct {
	pool *pgxpool.Pool
}

func NewBoostRepo(pool *pgxpool.Pool) *BoostRepo {
	return &BoostRepo{pool: pool}
}

type BoostWindow struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
}

const boostColumns = `
	boost_credits,
	is_boost_active,
	boost_start_time,
	boost_end_time,
	boost_duration,
	boost_purchased_total,
	boost_used_total`

func scanBoost(row pgx.Row) (model.BoostState, error) {
	var b model.BoostState
	err := row.Scan(
		&b.Credits,
		&b.IsActive,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&b.PurchasedTotal,
		&b.UsedTotal,
	)
	return b, err
}

func (r *BoostRepo) Get(ctx context.Context, userID string) (model.BoostState, error) {
	if r.pool == nil {
		return model.BoostState{}, ErrNoPool
	}
	state, err := scanBoost(r.pool.QueryRow(ctx, `SELECT`+boostColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BoostState{}, ErrUserNotFound
		}
		return model.BoostState{}, fmt.Errorf("get boost state: %w", err)
	}
	return state, nil
}

// PurchaseAndActivate credits the package, records the transaction id and
// starts a fresh window consuming one credit, all in one statement. A
// transaction id already on the row yields ErrBoostTransactionSeen with the
// current state.
func (r *BoostRepo) PurchaseAndActivate(ctx context.Context, userID, transactionID string, credits int, window BoostWindow) (model.BoostState, error) {
	if credits <= 0 {
		return model.BoostState{}, fmt.Errorf("invalid boost credits")
	}
	if r.pool == nil {
		return model.BoostState{}, ErrNoPool
	}

	state, err := scanBoost(r.pool.QueryRow(ctx, `
UPDATE users
SET
	boost_credits = boost_credits + $3 - 1,
	boost_purchased_total = boost_purchased_total + $3,
	boost_used_total = boost_used_total + 1,
	boost_transaction_ids = array_append(boost_transaction_ids, $2),
	is_boost_active = TRUE,
	boost_start_time = $4,
	boost_end_time = $5,
	boost_duration = $6,
	updated_at = NOW()
WHERE id = $1 AND NOT ($2 = ANY(boost_transaction_ids))
RETURNING`+boostColumns,
		userID, transactionID, credits, window.Start.UTC(), window.End.UTC(), window.DurationMinutes,
	))
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.BoostState{}, fmt.Errorf("purchase boost: %w", err)
	}

	current, err := r.Get(ctx, userID)
	if err != nil {
		return model.BoostState{}, err
	}
	return current, ErrBoostTransactionSeen
}

// Activate starts a window from stored credits. It only applies when the
// user has a credit and no unexpired window at window.Start; ok is false
// otherwise.
func (r *BoostRepo) Activate(ctx context.Context, userID string, window BoostWindow) (model.BoostState, bool, error) {
	if r.pool == nil {
		return model.BoostState{}, false, ErrNoPool
	}

	state, err := scanBoost(r.pool.QueryRow(ctx, `
UPDATE users
SET
	boost_credits = boost_credits - 1,
	boost_used_total = boost_used_total + 1,
	is_boost_active = TRUE,
	boost_start_time = $2,
	boost_end_time = $3,
	boost_duration = $4,
	updated_at = NOW()
WHERE id = $1
	AND boost_credits >= 1
	AND NOT (is_boost_active AND boost_end_time IS NOT NULL AND boost_end_time > $2)
RETURNING`+boostColumns,
		userID, window.Start.UTC(), window.End.UTC(), window.DurationMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BoostState{}, false, nil
		}
		return model.BoostState{}, false, fmt.Errorf("activate boost: %w", err)
	}
	return state, true, nil
}

// Deactivate clears the window fields of an active window. Credits and the
// stored duration are left as they are.
func (r *BoostRepo) Deactivate(ctx context.Context, userID string) (model.BoostState, bool, error) {
	if r.pool == nil {
		return model.BoostState{}, false, ErrNoPool
	}

	state, err := scanBoost(r.pool.QueryRow(ctx, `
UPDATE users
SET
	is_boost_active = FALSE,
	boost_start_time = NULL,
	boost_end_time = NULL,
	updated_at = NOW()
WHERE id = $1 AND is_boost_active
RETURNING`+boostColumns, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BoostState{}, false, nil
		}
		return model.BoostState{}, false, fmt.Errorf("deactivate boost: %w", err)
	}
	return state, true, nil
}

// ClearExpired resets windows that ended at or before now for the given
// users. Rows whose window is still live are untouched.
func (r *BoostRepo) ClearExpired(ctx context.Context, userIDs []string, now time.Time) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	if r.pool == nil {
		return 0, ErrNoPool
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET
	is_boost_active = FALSE,
	boost_start_time = NULL,
	boost_end_time = NULL,
	updated_at = NOW()
WHERE id = ANY($1::text[])
	AND is_boost_active
	AND (boost_end_time IS NULL OR boost_end_time <= $2)
`, userIDs, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired boosts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SweepExpired clears up to limit expired windows across the directory.
func (r *BoostRepo) SweepExpired(ctx context.Context, now time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	if r.pool == nil {
		return 0, ErrNoPool
	}

	var cleared int64
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE users
SET
	is_boost_active = FALSE,
	boost_start_time = NULL,
	boost_end_time = NULL,
	updated_at = NOW()
WHERE id IN (
	SELECT id
	FROM users
	WHERE is_boost_active
		AND (boost_end_time IS NULL OR boost_end_time <= $1)
	ORDER BY boost_end_time NULLS FIRST
	LIMIT $2
	FOR UPDATE SKIP LOCKED
)
`, now.UTC(), limit)
		if err != nil {
			return fmt.Errorf("sweep expired boosts: %w", err)
		}
		cleared = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cleared, nil
}

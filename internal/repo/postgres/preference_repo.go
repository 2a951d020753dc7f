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

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

const preferenceColumns = `
	id,
	user_id,
	profile_type,
	genders,
	min_age,
	max_age,
	max_distance,
	interests,
	updated_at`

func scanPreference(row pgx.Row) (model.Preference, error) {
	var (
		p           model.Preference
		profileType string
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&profileType,
		&p.Genders,
		&p.MinAge,
		&p.MaxAge,
		&p.MaxDistance,
		&p.Interests,
		&p.UpdatedAt,
	); err != nil {
		return model.Preference{}, err
	}
	p.ProfileType = enums.ProfileType(profileType)
	return p, nil
}

// Find returns the saved preference without creating one.
func (r *PreferenceRepo) Find(ctx context.Context, userID string) (model.Preference, error) {
	if r.pool == nil {
		return model.Preference{}, ErrNoPool
	}
	pref, err := scanPreference(r.pool.QueryRow(ctx, `SELECT`+preferenceColumns+` FROM user_preferences WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, ErrPreferenceNotFound
		}
		return model.Preference{}, fmt.Errorf("find preference: %w", err)
	}
	return pref, nil
}

// GetOrCreate inserts defaults if the owner has no row yet, then reads the
// row back. Concurrent first reads converge on one row.
func (r *PreferenceRepo) GetOrCreate(ctx context.Context, defaults model.Preference) (model.Preference, error) {
	if r.pool == nil {
		return model.Preference{}, ErrNoPool
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_preferences (
	id, user_id, profile_type, genders, min_age, max_age, max_distance, interests, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`,
		uuid.NewString(),
		defaults.UserID,
		string(defaults.ProfileType),
		nonNil(defaults.Genders),
		defaults.MinAge,
		defaults.MaxAge,
		defaults.MaxDistance,
		nonNil(defaults.Interests),
	); err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return model.Preference{}, ErrUserNotFound
		}
		return model.Preference{}, fmt.Errorf("insert default preference: %w", err)
	}

	return r.Find(ctx, defaults.UserID)
}

func (r *PreferenceRepo) Upsert(ctx context.Context, pref model.Preference, now time.Time) (model.Preference, error) {
	if r.pool == nil {
		return model.Preference{}, ErrNoPool
	}

	saved, err := scanPreference(r.pool.QueryRow(ctx, `
INSERT INTO user_preferences (
	id, user_id, profile_type, genders, min_age, max_age, max_distance, interests, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (user_id) DO UPDATE SET
	profile_type = EXCLUDED.profile_type,
	genders = EXCLUDED.genders,
	min_age = EXCLUDED.min_age,
	max_age = EXCLUDED.max_age,
	max_distance = EXCLUDED.max_distance,
	interests = EXCLUDED.interests,
	updated_at = EXCLUDED.updated_at
RETURNING`+preferenceColumns,
		uuid.NewString(),
		pref.UserID,
		string(pref.ProfileType),
		nonNil(pref.Genders),
		pref.MinAge,
		pref.MaxAge,
		pref.MaxDistance,
		nonNil(pref.Interests),
		now.UTC(),
	))
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return model.Preference{}, ErrUserNotFound
		}
		return model.Preference{}, fmt.Errorf("upsert preference: %w", err)
	}
	return saved, nil
}

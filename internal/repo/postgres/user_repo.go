package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
	u.id,
	u.name,
	u.birthday,
	u.city,
	u.bio,
	u.image,
	u.gallery,
	u.gender_id,
	u.orientation_id,
	u.interest_ids,
	u.love_language_id,
	u.zodiac_id,
	u.work_id,
	u.communication_style_id,
	u.latitude,
	u.longitude,
	u.profile_type,
	u.plan_type,
	u.remaining_swipes,
	u.total_swipes,
	u.likes_count,
	u.superlikes_count,
	u.matches_count,
	u.device_token,
	u.boost_credits,
	u.is_boost_active,
	u.boost_start_time,
	u.boost_end_time,
	u.boost_duration,
	u.boost_purchased_total,
	u.boost_used_total,
	u.created_at`

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u           model.User
		profileType string
		planType    string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Birthday,
		&u.City,
		&u.Bio,
		&u.Image,
		&u.Gallery,
		&u.GenderID,
		&u.OrientationID,
		&u.InterestIDs,
		&u.LoveLanguageID,
		&u.ZodiacID,
		&u.WorkID,
		&u.CommunicationStyleID,
		&u.Latitude,
		&u.Longitude,
		&profileType,
		&planType,
		&u.RemainingSwipes,
		&u.TotalSwipes,
		&u.LikesCount,
		&u.SuperLikesCount,
		&u.MatchesCount,
		&u.DeviceToken,
		&u.Boost.Credits,
		&u.Boost.IsActive,
		&u.Boost.StartTime,
		&u.Boost.EndTime,
		&u.Boost.DurationMinutes,
		&u.Boost.PurchasedTotal,
		&u.Boost.UsedTotal,
		&u.CreatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	u.ProfileType = enums.ProfileType(profileType)
	u.PlanType = enums.PlanType(planType)
	dropInvalidCoordinates(&u)
	return u, nil
}

// dropInvalidCoordinates treats an out-of-range location as unknown, so the
// user is kept by distance filters instead of being placed somewhere wrong.
func dropInvalidCoordinates(u *model.User) {
	if !u.HasCoordinates() {
		u.Latitude, u.Longitude = nil, nil
		return
	}
	if !rules.ValidCoordinates(*u.Latitude, *u.Longitude) {
		u.Latitude, u.Longitude = nil, nil
	}
}

func (r *UserRepo) Get(ctx context.Context, id string) (model.User, error) {
	if strings.TrimSpace(id) == "" {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrNoPool
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT`+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.pool == nil {
		return false, ErrNoPool
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// ListByIDs returns the users found among ids; missing ids are skipped and
// order is not preserved.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	if r.pool == nil {
		return nil, ErrNoPool
	}

	rows, err := r.pool.Query(ctx, `SELECT`+userColumns+` FROM users u WHERE u.id = ANY($1::text[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows, len(ids))
}

type CandidateQuery struct {
	ExcludeIDs            []string
	ExcludeGenderID       string
	GenderIDs             []string
	OrientationIDs        []string
	InterestIDs           []string
	LoveLanguageIDs       []string
	ZodiacIDs             []string
	WorkIDs               []string
	CommunicationStyleIDs []string
	ProfileType           string
	BirthdayFrom          *time.Time
	BirthdayTo            *time.Time
	PremiumOnly           bool
	Offset                int
	Limit                 int
}

// ListCandidates returns directory users matching q, newest first. Geo and
// boost ordering are applied by the caller.
func (r *UserRepo) ListCandidates(ctx context.Context, q CandidateQuery) ([]model.User, error) {
	if q.Limit <= 0 {
		q.Limit = 30
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if r.pool == nil {
		return nil, ErrNoPool
	}

	applyBirthday := q.BirthdayFrom != nil && q.BirthdayTo != nil
	var from, to time.Time
	if applyBirthday {
		from, to = *q.BirthdayFrom, *q.BirthdayTo
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE
	NOT (u.id = ANY($1::text[]))
	AND ($2::text = '' OR u.gender_id <> $2)
	AND (COALESCE(array_length($3::text[], 1), 0) = 0 OR u.gender_id = ANY($3::text[]))
	AND (COALESCE(array_length($4::text[], 1), 0) = 0 OR u.orientation_id = ANY($4::text[]))
	AND (COALESCE(array_length($5::text[], 1), 0) = 0 OR u.interest_ids && $5::text[])
	AND (COALESCE(array_length($6::text[], 1), 0) = 0 OR u.love_language_id = ANY($6::text[]))
	AND (COALESCE(array_length($7::text[], 1), 0) = 0 OR u.zodiac_id = ANY($7::text[]))
	AND (COALESCE(array_length($8::text[], 1), 0) = 0 OR u.work_id = ANY($8::text[]))
	AND (COALESCE(array_length($9::text[], 1), 0) = 0 OR u.communication_style_id = ANY($9::text[]))
	AND ($10::text = '' OR u.profile_type = $10)
	AND (
		$11::boolean = FALSE
		OR (u.birthday IS NOT NULL AND u.birthday BETWEEN $12::date AND $13::date)
	)
	AND ($14::boolean = FALSE OR LOWER(u.plan_type) NOT IN ('', 'free'))
ORDER BY u.created_at DESC, u.id DESC
OFFSET $15
LIMIT $16
`,
		nonNil(q.ExcludeIDs),            // $1
		q.ExcludeGenderID,               // $2
		nonNil(q.GenderIDs),             // $3
		nonNil(q.OrientationIDs),        // $4
		nonNil(q.InterestIDs),           // $5
		nonNil(q.LoveLanguageIDs),       // $6
		nonNil(q.ZodiacIDs),             // $7
		nonNil(q.WorkIDs),               // $8
		nonNil(q.CommunicationStyleIDs), // $9
		q.ProfileType,                   // $10
		applyBirthday,                   // $11
		from,                            // $12
		to,                              // $13
		q.PremiumOnly,                   // $14
		q.Offset,                        // $15
		q.Limit,                         // $16
	)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows, q.Limit)
}

// ConsumeSwipe takes one unit of free-tier quota. It reports false without
// writing when the counter is already zero.
func (r *UserRepo) ConsumeSwipe(ctx context.Context, id string) (bool, error) {
	if r.pool == nil {
		return false, ErrNoPool
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET remaining_swipes = remaining_swipes - 1, updated_at = NOW()
WHERE id = $1 AND remaining_swipes > 0
`, id)
	if err != nil {
		return false, fmt.Errorf("consume swipe quota: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepo) RefundSwipe(ctx context.Context, id string) error {
	if r.pool == nil {
		return ErrNoPool
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET remaining_swipes = remaining_swipes + 1, updated_at = NOW()
WHERE id = $1
`, id); err != nil {
		return fmt.Errorf("refund swipe quota: %w", err)
	}
	return nil
}

func (r *UserRepo) IncrementSwipeCounters(ctx context.Context, id string, action enums.SwipeAction) error {
	if r.pool == nil {
		return ErrNoPool
	}
	var likes, superLikes int
	switch action {
	case enums.SwipeActionLike:
		likes = 1
	case enums.SwipeActionSuperLike:
		superLikes = 1
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET
	total_swipes = total_swipes + 1,
	likes_count = likes_count + $2,
	superlikes_count = superlikes_count + $3
WHERE id = $1
`, id, likes, superLikes); err != nil {
		return fmt.Errorf("increment swipe counters: %w", err)
	}
	return nil
}

func (r *UserRepo) IncrementMatches(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if r.pool == nil {
		return ErrNoPool
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET matches_count = matches_count + 1
WHERE id = ANY($1::text[])
`, ids); err != nil {
		return fmt.Errorf("increment match counters: %w", err)
	}
	return nil
}

func (r *UserRepo) DeviceToken(ctx context.Context, id string) (string, error) {
	if r.pool == nil {
		return "", ErrNoPool
	}
	var token string
	if err := r.pool.QueryRow(ctx, `SELECT device_token FROM users WHERE id = $1`, id).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get device token: %w", err)
	}
	return token, nil
}

func (r *UserRepo) Name(ctx context.Context, id string) (string, error) {
	if r.pool == nil {
		return "", ErrNoPool
	}
	var name string
	if err := r.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, id).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get user name: %w", err)
	}
	return name, nil
}

func collectUsers(rows pgx.Rows, capacity int) ([]model.User, error) {
	items := make([]model.User, 0, capacity)
	for rows.Next() {
		item, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}
	return items, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

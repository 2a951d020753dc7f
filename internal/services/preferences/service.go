package preferences

import (
	"context"
	"errors"
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
)

type Store interface {
	Find(ctx context.Context, userID string) (model.Preference, error)
	GetOrCreate(ctx context.Context, defaults model.Preference) (model.Preference, error)
	Upsert(ctx context.Context, pref model.Preference, now time.Time) (model.Preference, error)
}

type Config struct {
	DefaultMinAge      int
	DefaultMaxAge      int
	DefaultMaxDistance int
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// Update carries the fields a client sent; nil fields keep their saved value.
type Update struct {
	ProfileType *string
	Genders     *[]string
	MinAge      *int
	MaxAge      *int
	MaxDistance *int
	Interests   *[]string
}

func NewService(store Store, cfg Config) *Service {
	if cfg.DefaultMinAge <= 0 {
		cfg.DefaultMinAge = 18
	}
	if cfg.DefaultMaxAge < cfg.DefaultMinAge {
		cfg.DefaultMaxAge = 60
	}
	if cfg.DefaultMaxDistance <= 0 {
		cfg.DefaultMaxDistance = 100
	}
	return &Service{store: store, cfg: cfg, now: time.Now}
}

func (s *Service) Defaults(userID string) model.Preference {
	return model.Preference{
		UserID:      userID,
		ProfileType: enums.ProfileTypePersonal,
		Genders:     []string{},
		MinAge:      s.cfg.DefaultMinAge,
		MaxAge:      s.cfg.DefaultMaxAge,
		MaxDistance: s.cfg.DefaultMaxDistance,
		Interests:   []string{},
	}
}

// Get returns the saved preference, creating the defaults on first read.
func (s *Service) Get(ctx context.Context, userID string) (model.Preference, error) {
	if userID == "" {
		return model.Preference{}, apperr.InvalidArgument("user id is required")
	}
	pref, err := s.store.GetOrCreate(ctx, s.Defaults(userID))
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Preference{}, apperr.NotFound("user not found")
		}
		return model.Preference{}, apperr.Internal("failed to load preferences", err)
	}
	return pref, nil
}

// Find returns the saved preference without creating one; ok is false when
// the user never saved or fetched preferences.
func (s *Service) Find(ctx context.Context, userID string) (model.Preference, bool, error) {
	pref, err := s.store.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return model.Preference{}, false, nil
		}
		return model.Preference{}, false, apperr.Internal("failed to load preferences", err)
	}
	return pref, true, nil
}

func (s *Service) Save(ctx context.Context, userID string, upd Update) (model.Preference, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return model.Preference{}, err
	}

	next := current
	if upd.ProfileType != nil {
		pt, ok := enums.ParseProfileType(*upd.ProfileType)
		if !ok {
			return model.Preference{}, apperr.InvalidArgument("profileType must be personal, business or collaboration")
		}
		next.ProfileType = pt
	}
	if upd.Genders != nil {
		next.Genders = compactIDs(*upd.Genders)
	}
	if upd.Interests != nil {
		next.Interests = compactIDs(*upd.Interests)
	}
	if upd.MinAge != nil {
		next.MinAge = *upd.MinAge
	}
	if upd.MaxAge != nil {
		next.MaxAge = *upd.MaxAge
	}
	if upd.MaxDistance != nil {
		next.MaxDistance = *upd.MaxDistance
	}

	if next.MinAge < 0 || next.MaxAge < 0 || next.MaxDistance < 0 {
		return model.Preference{}, apperr.InvalidArgument("age and distance must not be negative")
	}
	if next.MinAge > next.MaxAge {
		return model.Preference{}, apperr.InvalidArgument("minAge must not exceed maxAge")
	}

	saved, err := s.store.Upsert(ctx, next, s.now())
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Preference{}, apperr.NotFound("user not found")
		}
		return model.Preference{}, apperr.Internal("failed to save preferences", err)
	}
	return saved, nil
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

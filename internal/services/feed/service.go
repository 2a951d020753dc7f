package feed

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
	"github.com/ivankudzin/sparkmatch/internal/services/cards"
)

const cleanupTimeout = 5 * time.Second

type UserStore interface {
	Get(ctx context.Context, id string) (model.User, error)
	ListCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]model.User, error)
}

type SwipeStore interface {
	TargetsSwipedBy(ctx context.Context, swiperID string) ([]string, error)
	SwipersWhoDisliked(ctx context.Context, targetID string) ([]string, error)
	LikedAmong(ctx context.Context, swiperID string, candidateIDs []string) (map[string]bool, error)
}

type PreferenceFinder interface {
	Find(ctx context.Context, userID string) (model.Preference, bool, error)
}

type BoostCleaner interface {
	ClearExpired(ctx context.Context, userIDs []string, now time.Time) (int64, error)
}

type Dependencies struct {
	Users       UserStore
	Swipes      SwipeStore
	Preferences PreferenceFinder
	Boosts      BoostCleaner
	Cards       *cards.Builder
	Logger      *zap.Logger
}

type Config struct {
	DefaultPageSize  int
	MaxPageSize      int
	WorkingSetFactor int
}

type Service struct {
	users  UserStore
	swipes SwipeStore
	prefs  PreferenceFinder
	boosts BoostCleaner
	cards  *cards.Builder
	logger *zap.Logger
	cfg    Config
	now    func() time.Time
	async  func(func())
}

type Request struct {
	RequesterID   string
	Overrides     rules.FilterOverrides
	Page          int
	Limit         int
	WithLikeFlags bool
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.WorkingSetFactor < 1 {
		cfg.WorkingSetFactor = 3
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  deps.Users,
		swipes: deps.Swipes,
		prefs:  deps.Preferences,
		boosts: deps.Boosts,
		cards:  deps.Cards,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		async:  func(fn func()) { go fn() },
	}
}

// Build returns one page of discovery cards for the requester. Boosted
// candidates come first; each group keeps newest-first order.
func (s *Service) Build(ctx context.Context, req Request) ([]model.Card, error) {
	if req.RequesterID == "" {
		return nil, apperr.InvalidArgument("requester id is required")
	}
	page, limit := s.normalizePage(req.Page, req.Limit)
	now := s.now().UTC()

	requester, err := s.users.Get(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load requester", err)
	}

	excluded, err := s.exclusionSet(ctx, requester.ID)
	if err != nil {
		return nil, err
	}

	var saved *model.Preference
	if pref, ok, err := s.prefs.Find(ctx, requester.ID); err != nil {
		return nil, err
	} else if ok {
		saved = &pref
	}
	filter := rules.ResolveFilter(requester, saved, req.Overrides)

	query := pgrepo.CandidateQuery{
		ExcludeIDs:            excluded,
		ExcludeGenderID:       filter.ExcludeGenderID,
		GenderIDs:             filter.GenderIDs,
		OrientationIDs:        filter.OrientationIDs,
		InterestIDs:           filter.InterestIDs,
		LoveLanguageIDs:       filter.LoveLanguageIDs,
		ZodiacIDs:             filter.ZodiacIDs,
		WorkIDs:               filter.WorkIDs,
		CommunicationStyleIDs: filter.CommunicationStyleIDs,
		ProfileType:           filter.ProfileType,
		PremiumOnly:           filter.PremiumOnly,
		Offset:                (page - 1) * limit,
		Limit:                 limit * s.cfg.WorkingSetFactor,
	}
	if window, ok := filter.BirthdayWindow(now); ok {
		query.BirthdayFrom = &window.Earliest
		query.BirthdayTo = &window.Latest
	}

	candidates, err := s.users.ListCandidates(ctx, query)
	if err != nil {
		return nil, apperr.Internal("failed to list candidates", err)
	}

	boosted := make([]model.User, 0)
	regular := make([]model.User, 0, len(candidates))
	expired := make([]string, 0)
	for _, c := range candidates {
		if c.ID == requester.ID {
			continue
		}
		if c.Boost.ExpiredAt(now) {
			expired = append(expired, c.ID)
		}
		if !filter.WithinDistance(requester, c) {
			continue
		}
		if c.Boost.ActiveAt(now) {
			boosted = append(boosted, c)
		} else {
			regular = append(regular, c)
		}
	}
	s.scheduleBoostCleanup(expired, now)

	ordered := append(boosted, regular...)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	var liked map[string]bool
	if req.WithLikeFlags && len(ordered) > 0 {
		ids := make([]string, len(ordered))
		for i, c := range ordered {
			ids[i] = c.ID
		}
		liked, err = s.swipes.LikedAmong(ctx, requester.ID, ids)
		if err != nil {
			return nil, apperr.Internal("failed to load like flags", err)
		}
	}

	out := make([]model.Card, 0, len(ordered))
	for _, c := range ordered {
		card := cards.WithDistance(s.cards.Card(ctx, c, now), requester, c)
		if req.WithLikeFlags {
			card = cards.WithLiked(card, liked[c.ID])
		}
		out = append(out, card)
	}
	return out, nil
}

// exclusionSet is the requester, everyone they swiped and everyone who
// disliked them. Computed per call.
func (s *Service) exclusionSet(ctx context.Context, requesterID string) ([]string, error) {
	swiped, err := s.swipes.TargetsSwipedBy(ctx, requesterID)
	if err != nil {
		return nil, apperr.Internal("failed to load swiped users", err)
	}
	dislikers, err := s.swipes.SwipersWhoDisliked(ctx, requesterID)
	if err != nil {
		return nil, apperr.Internal("failed to load dislikers", err)
	}

	seen := make(map[string]struct{}, len(swiped)+len(dislikers)+1)
	out := make([]string, 0, len(swiped)+len(dislikers)+1)
	for _, id := range append(append([]string{requesterID}, swiped...), dislikers...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// scheduleBoostCleanup clears observed expired windows off the request path.
// Failures are logged only.
func (s *Service) scheduleBoostCleanup(ids []string, now time.Time) {
	if len(ids) == 0 || s.boosts == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if _, err := s.boosts.ClearExpired(ctx, ids, now); err != nil {
			s.logger.Warn("clear expired boosts failed", zap.Strings("user_ids", ids), zap.Error(err))
		}
	})
}

func (s *Service) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return page, limit
}

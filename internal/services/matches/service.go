package matches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
	"github.com/ivankudzin/sparkmatch/internal/services/cards"
)

type MatchStore interface {
	ListActive(ctx context.Context, userID string, offset, limit int) ([]model.Match, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

type SwipeStore interface {
	LikersOf(ctx context.Context, targetID string, offset, limit int) ([]string, error)
	LikedBy(ctx context.Context, swiperID string, offset, limit int) ([]string, error)
	LikedAmong(ctx context.Context, swiperID string, candidateIDs []string) (map[string]bool, error)
}

type TaxonomyResolver interface {
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

type GalleryResolver interface {
	ImageURL(ctx context.Context, key string) string
	GalleryURLs(ctx context.Context, keys []string) []string
}

type Dependencies struct {
	Matches    MatchStore
	Users      UserStore
	Swipes     SwipeStore
	Taxonomies TaxonomyResolver
	Images     GalleryResolver
	Cards      *cards.Builder
}

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

type Service struct {
	matches    MatchStore
	users      UserStore
	swipes     SwipeStore
	taxonomies TaxonomyResolver
	images     GalleryResolver
	cards      *cards.Builder
	cfg        Config
	now        func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &Service{
		matches:    deps.Matches,
		users:      deps.Users,
		swipes:     deps.Swipes,
		taxonomies: deps.Taxonomies,
		images:     deps.Images,
		cards:      deps.Cards,
		cfg:        cfg,
		now:        time.Now,
	}
}

// List returns the requester's active matches as cards of the other party.
// Overrides are applied after the page is loaded, so a filtered page can be
// shorter than limit.
func (s *Service) List(ctx context.Context, requesterID string, overrides rules.FilterOverrides, page, limit int) ([]model.Card, error) {
	requester, err := s.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	page, limit = s.normalizePage(page, limit)

	records, err := s.matches.ListActive(ctx, requester.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list matches", err)
	}
	otherIDs := make([]string, 0, len(records))
	for _, m := range records {
		otherIDs = append(otherIDs, m.Other(requester.ID))
	}

	others, err := s.usersInOrder(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	filter := rules.OverrideFilter(overrides)
	kept := make([]model.User, 0, len(others))
	keptIDs := make([]string, 0, len(others))
	for _, u := range others {
		if !filter.Matches(requester, u, now) {
			continue
		}
		kept = append(kept, u)
		keptIDs = append(keptIDs, u.ID)
	}

	liked := map[string]bool{}
	if len(keptIDs) > 0 {
		liked, err = s.swipes.LikedAmong(ctx, requester.ID, keptIDs)
		if err != nil {
			return nil, apperr.Internal("failed to load like flags", err)
		}
	}

	out := make([]model.Card, 0, len(kept))
	for _, u := range kept {
		card := cards.WithDistance(s.cards.Card(ctx, u, now), requester, u)
		out = append(out, cards.WithLiked(card, liked[u.ID]))
	}
	return out, nil
}

// LikesReceived lists users whose latest swipe on the requester is positive,
// newest first.
func (s *Service) LikesReceived(ctx context.Context, requesterID string, page, limit int) ([]model.Card, error) {
	return s.counterparts(ctx, requesterID, page, limit, s.swipes.LikersOf)
}

// LikesSent lists users the requester currently likes, newest first.
func (s *Service) LikesSent(ctx context.Context, requesterID string, page, limit int) ([]model.Card, error) {
	return s.counterparts(ctx, requesterID, page, limit, s.swipes.LikedBy)
}

func (s *Service) counterparts(
	ctx context.Context,
	requesterID string,
	page, limit int,
	list func(ctx context.Context, id string, offset, limit int) ([]string, error),
) ([]model.Card, error) {
	requester, err := s.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	page, limit = s.normalizePage(page, limit)

	ids, err := list(ctx, requester.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list likes", err)
	}
	users, err := s.usersInOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]model.Card, 0, len(users))
	for _, u := range users {
		out = append(out, cards.WithDistance(s.cards.Card(ctx, u, now), requester, u))
	}
	return out, nil
}

// Profile returns the full view of one user with image URLs and taxonomy
// names resolved.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Profile{}, apperr.InvalidArgument("user id is required")
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Profile{}, apperr.NotFound("user not found")
		}
		return model.Profile{}, apperr.Internal("failed to load user", err)
	}

	ids := append([]string{
		u.GenderID, u.OrientationID, u.LoveLanguageID, u.ZodiacID, u.WorkID, u.CommunicationStyleID,
	}, u.InterestIDs...)
	names := map[string]string{}
	if s.taxonomies != nil {
		names, err = s.taxonomies.Names(ctx, ids)
		if err != nil {
			return model.Profile{}, apperr.Internal("failed to resolve taxonomies", err)
		}
	}

	now := s.now().UTC()
	card := s.cards.Card(ctx, u, now)
	profile := model.Profile{
		ID:                 u.ID,
		Name:               u.Name,
		Age:                card.Age,
		Birthday:           u.Birthday,
		City:               u.City,
		Bio:                u.Bio,
		ProfileType:        string(u.ProfileType),
		Image:              card.Image,
		Gallery:            []string{},
		Gender:             taxon(names, u.GenderID),
		Orientation:        taxon(names, u.OrientationID),
		Interests:          make([]model.Taxon, 0, len(u.InterestIDs)),
		LoveLanguage:       taxon(names, u.LoveLanguageID),
		Zodiac:             taxon(names, u.ZodiacID),
		Work:               taxon(names, u.WorkID),
		CommunicationStyle: taxon(names, u.CommunicationStyleID),
		IsBoosted:          card.IsBoosted,
		BoostEndTime:       card.BoostEndTime,
	}
	if s.images != nil {
		profile.Gallery = s.images.GalleryURLs(ctx, u.Gallery)
	}
	for _, id := range u.InterestIDs {
		if t := taxon(names, id); t != nil {
			profile.Interests = append(profile.Interests, *t)
		}
	}
	return profile, nil
}

func (s *Service) requester(ctx context.Context, id string) (model.User, error) {
	if strings.TrimSpace(id) == "" {
		return model.User{}, apperr.InvalidArgument("requester id is required")
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, apperr.Internal("failed to load requester", err)
	}
	return u, nil
}

// usersInOrder loads ids and returns them in the given order, dropping any
// that no longer exist.
func (s *Service) usersInOrder(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	loaded, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	byID := make(map[string]model.User, len(loaded))
	for _, u := range loaded {
		byID[u.ID] = u
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Service) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return page, limit
}

func taxon(names map[string]string, id string) *model.Taxon {
	if id == "" {
		return nil
	}
	name, ok := names[id]
	if !ok {
		return nil
	}
	return &model.Taxon{ID: id, Name: name}
}

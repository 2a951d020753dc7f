package matches

import (
	"context"
	"testing"
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
	"github.com/ivankudzin/sparkmatch/internal/services/cards"
)

var testNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type usersStub map[string]model.User

func (s usersStub) Get(_ context.Context, id string) (model.User, error) {
	u, ok := s[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s usersStub) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	// reverse order to prove the service restores the requested order
	for i := len(ids) - 1; i >= 0; i-- {
		if u, ok := s[ids[i]]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type matchesStub struct {
	items      []model.Match
	lastOffset int
	lastLimit  int
}

func (s *matchesStub) ListActive(_ context.Context, _ string, offset, limit int) ([]model.Match, error) {
	s.lastOffset, s.lastLimit = offset, limit
	return s.items, nil
}

type swipesStub struct {
	likers []string
	liked  []string
	flags  map[string]bool
}

func (s swipesStub) LikersOf(context.Context, string, int, int) ([]string, error) {
	return s.likers, nil
}

func (s swipesStub) LikedBy(context.Context, string, int, int) ([]string, error) {
	return s.liked, nil
}

func (s swipesStub) LikedAmong(_ context.Context, _ string, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		out[id] = s.flags[id]
	}
	return out, nil
}

type imagesStub struct{}

func (imagesStub) ImageURL(_ context.Context, key string) string {
	if key == "" {
		return "https://cdn.test/default.png"
	}
	return "https://cdn.test/" + key
}

func (i imagesStub) GalleryURLs(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, i.ImageURL(ctx, k))
	}
	return out
}

type taxonomiesStub map[string]string

func (t taxonomiesStub) Names(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := t[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func birthday(age int) *time.Time {
	b := testNow.AddDate(-age, 0, -10)
	return &b
}

func newTestService(users usersStub, m *matchesStub, sw swipesStub) *Service {
	svc := NewService(Dependencies{
		Matches:    m,
		Users:      users,
		Swipes:     sw,
		Taxonomies: taxonomiesStub{"g-w": "Woman", "i-1": "Hiking"},
		Images:     imagesStub{},
		Cards:      cards.NewBuilder(imagesStub{}),
	}, Config{DefaultPageSize: 10, MaxPageSize: 20})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestListResolvesOtherPartyAndPostFilters(t *testing.T) {
	users := usersStub{
		"a": {ID: "a", GenderID: "g-m"},
		"b": {ID: "b", Name: "Bea", GenderID: "g-w", Birthday: birthday(27), ProfileType: enums.ProfileTypePersonal},
		"c": {ID: "c", Name: "Cal", GenderID: "g-m", Birthday: birthday(40), ProfileType: enums.ProfileTypePersonal},
	}
	m := &matchesStub{items: []model.Match{
		{ID: "m1", User1ID: "a", User2ID: "b", IsActive: true},
		{ID: "m2", User1ID: "a", User2ID: "c", IsActive: true},
	}}
	svc := newTestService(users, m, swipesStub{flags: map[string]bool{"b": true}})

	all, err := svc.List(context.Background(), "a", rules.FilterOverrides{}, 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].ID != "b" || all[1].ID != "c" {
		t.Fatalf("unexpected cards: %+v", all)
	}
	if m.lastOffset != 5 || m.lastLimit != 5 {
		t.Fatalf("paging must be pushed to the store: offset=%d limit=%d", m.lastOffset, m.lastLimit)
	}
	if all[0].IsLiked == nil || !*all[0].IsLiked || all[1].IsLiked == nil || *all[1].IsLiked {
		t.Fatalf("unexpected like flags: %+v %+v", all[0].IsLiked, all[1].IsLiked)
	}

	maxAge := 30
	filtered, err := svc.List(context.Background(), "a", rules.FilterOverrides{MaxAge: &maxAge}, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "b" {
		t.Fatalf("age override must drop older match: %+v", filtered)
	}

	genders, err := svc.List(context.Background(), "a", rules.FilterOverrides{GenderIDs: []string{"g-m"}}, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(genders) != 1 || genders[0].ID != "c" {
		t.Fatalf("gender override must keep only c: %+v", genders)
	}
}

func TestListUnknownRequester(t *testing.T) {
	svc := newTestService(usersStub{}, &matchesStub{}, swipesStub{})
	_, err := svc.List(context.Background(), "nobody", rules.FilterOverrides{}, 1, 10)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLikesKeepStoreOrder(t *testing.T) {
	users := usersStub{
		"a": {ID: "a"},
		"b": {ID: "b"},
		"c": {ID: "c"},
	}
	svc := newTestService(users, &matchesStub{}, swipesStub{likers: []string{"c", "gone", "b"}, liked: []string{"b"}})

	received, err := svc.LikesReceived(context.Background(), "a", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 2 || received[0].ID != "c" || received[1].ID != "b" {
		t.Fatalf("unexpected received order: %+v", received)
	}
	if received[0].IsLiked != nil {
		t.Fatalf("likes listing carries no like flag")
	}

	sent, err := svc.LikesSent(context.Background(), "a", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 1 || sent[0].ID != "b" {
		t.Fatalf("unexpected sent: %+v", sent)
	}
}

func TestProfileResolvesImagesAndTaxonomies(t *testing.T) {
	end := testNow.Add(time.Hour)
	users := usersStub{"b": {
		ID:          "b",
		Name:        "Bea",
		Birthday:    birthday(27),
		Image:       "u/b/main.jpg",
		Gallery:     []string{"u/b/1.jpg", "u/b/2.jpg"},
		GenderID:    "g-w",
		InterestIDs: []string{"i-1", "i-unknown"},
		Boost:       model.BoostState{IsActive: true, EndTime: &end},
	}}
	svc := newTestService(users, &matchesStub{}, swipesStub{})

	p, err := svc.Profile(context.Background(), "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Image != "https://cdn.test/u/b/main.jpg" || len(p.Gallery) != 2 {
		t.Fatalf("unexpected images: %q %v", p.Image, p.Gallery)
	}
	if p.Gender == nil || p.Gender.Name != "Woman" {
		t.Fatalf("unexpected gender: %+v", p.Gender)
	}
	if len(p.Interests) != 1 || p.Interests[0].Name != "Hiking" {
		t.Fatalf("unexpected interests: %+v", p.Interests)
	}
	if p.Age == nil || *p.Age != 27 || !p.IsBoosted {
		t.Fatalf("unexpected age/boost: %+v", p)
	}
	if p.Zodiac != nil {
		t.Fatalf("unset taxonomy must be nil")
	}
}

func TestProfileNotFound(t *testing.T) {
	svc := newTestService(usersStub{}, &matchesStub{}, swipesStub{})
	_, err := svc.Profile(context.Background(), "missing")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

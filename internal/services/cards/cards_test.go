package cards

import (
	"context"
	"testing"
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

type prefixResolver struct{}

func (prefixResolver) ImageURL(_ context.Context, key string) string {
	if key == "" {
		return "https://cdn/default.png"
	}
	return "https://cdn/" + key
}

func TestCardBoostFlagsFollowLiveWindow(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	b := NewBuilder(prefixResolver{})

	expired := b.Card(context.Background(), model.User{ID: "a", Boost: model.BoostState{IsActive: true, EndTime: &past}}, now)
	if expired.IsBoosted || expired.BoostEndTime != nil {
		t.Fatalf("expired window must not render as boosted: %+v", expired)
	}

	live := b.Card(context.Background(), model.User{ID: "b", Boost: model.BoostState{IsActive: true, EndTime: &future}}, now)
	if !live.IsBoosted || live.BoostEndTime == nil || !live.BoostEndTime.Equal(future) {
		t.Fatalf("live window must render as boosted: %+v", live)
	}
}

func TestCardAgeAndImage(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	born := time.Date(2000, 1, 11, 0, 0, 0, 0, time.UTC)
	card := NewBuilder(prefixResolver{}).Card(context.Background(), model.User{
		ID:          "u",
		Name:        "Asha",
		Birthday:    &born,
		ProfileType: enums.ProfileTypeBusiness,
	}, now)

	if card.Age == nil || *card.Age != 25 {
		t.Fatalf("unexpected age: %v", card.Age)
	}
	if card.Image != "https://cdn/default.png" {
		t.Fatalf("missing image must resolve to default, got %q", card.Image)
	}
	if card.ProfileType != "business" {
		t.Fatalf("unexpected profile type: %q", card.ProfileType)
	}
}

func TestWithDistance(t *testing.T) {
	lat, lon := 10.0, 10.0
	requester := model.User{Latitude: &lat, Longitude: &lon}
	card := WithDistance(model.Card{}, requester, model.User{Latitude: &lat, Longitude: &lon})
	if card.DistanceMi == nil || *card.DistanceMi != 0 {
		t.Fatalf("expected zero distance, got %v", card.DistanceMi)
	}
	card = WithDistance(model.Card{}, requester, model.User{})
	if card.DistanceMi != nil {
		t.Fatalf("distance must be absent without candidate coordinates")
	}
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

func TestDropInvalidCoordinates(t *testing.T) {
	lat, lon, badLat := 51.5, -0.12, 123.0

	valid := model.User{Latitude: &lat, Longitude: &lon}
	dropInvalidCoordinates(&valid)
	if !valid.HasCoordinates() {
		t.Fatalf("valid coordinates must be kept")
	}

	outOfRange := model.User{Latitude: &badLat, Longitude: &lon}
	dropInvalidCoordinates(&outOfRange)
	if outOfRange.Latitude != nil || outOfRange.Longitude != nil {
		t.Fatalf("out of range coordinates must be dropped: %+v", outOfRange)
	}

	half := model.User{Latitude: &lat}
	dropInvalidCoordinates(&half)
	if half.Latitude != nil {
		t.Fatalf("a lone latitude must be dropped")
	}
}

func TestReadsWithoutPoolReportNoPool(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(nil)
	swipes := NewSwipeRepo(nil)
	matches := NewMatchRepo(nil)
	boosts := NewBoostRepo(nil)

	if _, err := users.Get(ctx, "u1"); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected Get error: %v", err)
	}
	if _, err := users.Exists(ctx, "u1"); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected Exists error: %v", err)
	}
	if _, err := users.ListCandidates(ctx, CandidateQuery{Limit: 10}); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected ListCandidates error: %v", err)
	}
	if _, err := swipes.HasPositive(ctx, "u1", "u2"); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected HasPositive error: %v", err)
	}
	if _, err := swipes.TargetsSwipedBy(ctx, "u1"); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected TargetsSwipedBy error: %v", err)
	}
	if _, err := matches.ListActive(ctx, "u1", 0, 10); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected ListActive error: %v", err)
	}
	if _, err := boosts.Get(ctx, "u1"); !errors.Is(err, ErrNoPool) {
		t.Fatalf("unexpected boost Get error: %v", err)
	}
	if ids, err := users.ListByIDs(ctx, nil); err != nil || len(ids) != 0 {
		t.Fatalf("empty id list must not need the pool: %v %v", ids, err)
	}
}

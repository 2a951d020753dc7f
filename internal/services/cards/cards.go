package cards

import (
	"context"
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
)

type ImageResolver interface {
	ImageURL(ctx context.Context, key string) string
}

// Builder renders directory users as cards.
type Builder struct {
	images ImageResolver
}

func NewBuilder(images ImageResolver) *Builder {
	return &Builder{images: images}
}

// Card renders u at now. Boost flags reflect the live window only, so an
// expired window is never shown as boosted.
func (b *Builder) Card(ctx context.Context, u model.User, now time.Time) model.Card {
	card := model.Card{
		ID:          u.ID,
		Name:        u.Name,
		City:        u.City,
		ProfileType: string(u.ProfileType),
	}
	if u.Birthday != nil {
		age := rules.AgeAt(*u.Birthday, now)
		card.Age = &age
	}
	if b.images != nil {
		card.Image = b.images.ImageURL(ctx, u.Image)
	} else {
		card.Image = u.Image
	}
	if u.Boost.ActiveAt(now) {
		card.IsBoosted = true
		end := *u.Boost.EndTime
		card.BoostEndTime = &end
	}
	return card
}

// WithDistance sets the distance from requester when both have coordinates.
func WithDistance(card model.Card, requester, u model.User) model.Card {
	if requester.HasCoordinates() && u.HasCoordinates() {
		d := rules.DistanceMiles(*requester.Latitude, *requester.Longitude, *u.Latitude, *u.Longitude)
		card.DistanceMi = &d
	}
	return card
}

func WithLiked(card model.Card, liked bool) model.Card {
	card.IsLiked = &liked
	return card
}

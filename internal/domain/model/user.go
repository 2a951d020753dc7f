package model

import (
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
)

// User is the discovery-relevant slice of a directory record.
type User struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Birthday             *time.Time        `json:"birthday,omitempty"`
	City                 string            `json:"city"`
	Bio                  string            `json:"bio"`
	Image                string            `json:"image"`
	Gallery              []string          `json:"gallery"`
	GenderID             string            `json:"gender"`
	OrientationID        string            `json:"orientation"`
	InterestIDs          []string          `json:"interests"`
	LoveLanguageID       string            `json:"loveLanguage"`
	ZodiacID             string            `json:"zodiac"`
	WorkID               string            `json:"work"`
	CommunicationStyleID string            `json:"communicationStyle"`
	Latitude             *float64          `json:"latitude,omitempty"`
	Longitude            *float64          `json:"longitude,omitempty"`
	ProfileType          enums.ProfileType `json:"profileType"`
	PlanType             enums.PlanType    `json:"planType"`
	RemainingSwipes      int               `json:"remainingSwipes"`
	TotalSwipes          int               `json:"totalSwipes"`
	LikesCount           int               `json:"likesCount"`
	SuperLikesCount      int               `json:"superLikesCount"`
	MatchesCount         int               `json:"matchesCount"`
	DeviceToken          string            `json:"-"`
	Boost                BoostState        `json:"boost"`
	CreatedAt            time.Time         `json:"createdAt"`
}

func (u User) HasCoordinates() bool {
	return u.Latitude != nil && u.Longitude != nil
}

package model

import "time"

// Card is one candidate as rendered in a discovery or match listing.
type Card struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Age          *int       `json:"age"`
	City         string     `json:"city"`
	ProfileType  string     `json:"profileType"`
	Image        string     `json:"image"`
	IsBoosted    bool       `json:"isBoosted"`
	BoostEndTime *time.Time `json:"boostEndTime"`
	IsLiked      *bool      `json:"isLike,omitempty"`
	DistanceMi   *float64   `json:"distance,omitempty"`
}

package model

import "time"

// Taxon is a taxonomy reference resolved to its display name.
type Taxon struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Profile is the full view of another user.
type Profile struct {
	ID                 string     `json:"_id"`
	Name               string     `json:"name"`
	Age                *int       `json:"age"`
	Birthday           *time.Time `json:"birthday"`
	City               string     `json:"city"`
	Bio                string     `json:"bio"`
	ProfileType        string     `json:"profileType"`
	Image              string     `json:"image"`
	Gallery            []string   `json:"gallery"`
	Gender             *Taxon     `json:"gender"`
	Orientation        *Taxon     `json:"orientation"`
	Interests          []Taxon    `json:"interests"`
	LoveLanguage       *Taxon     `json:"loveLanguage"`
	Zodiac             *Taxon     `json:"zodiac"`
	Work               *Taxon     `json:"work"`
	CommunicationStyle *Taxon     `json:"communicationStyle"`
	IsBoosted          bool       `json:"isBoosted"`
	BoostEndTime       *time.Time `json:"boostEndTime"`
}

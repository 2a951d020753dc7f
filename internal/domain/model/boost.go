package model

import "time"

type BoostState struct {
	Credits         int        `json:"boostCredits"`
	IsActive        bool       `json:"isBoostActive"`
	StartTime       *time.Time `json:"boostStartTime"`
	EndTime         *time.Time `json:"boostEndTime"`
	DurationMinutes int        `json:"boostDuration"`
	PurchasedTotal  int        `json:"totalBoostsPurchased"`
	UsedTotal       int        `json:"totalBoostsUsed"`
}

// ActiveAt reports whether the window is live at t. A set flag with an end
// time at or before t is an expired window, not an active one.
func (b BoostState) ActiveAt(t time.Time) bool {
	return b.IsActive && b.EndTime != nil && b.EndTime.After(t)
}

// ExpiredAt reports a window that is still flagged but has run out.
func (b BoostState) ExpiredAt(t time.Time) bool {
	return b.IsActive && (b.EndTime == nil || !b.EndTime.After(t))
}

type BoostPackage struct {
	Code    string `json:"id"`
	Credits int    `json:"boosts"`
	Price   int    `json:"price"`
	Label   string `json:"label"`
}

package dto

type SwipeRequest struct {
	TargetID string `json:"targetId" validate:"required,uuid"`
}

// SwipeResponse always carries matchId; it is null when no match formed.
type SwipeResponse struct {
	SwipeID string  `json:"swipeId"`
	IsMatch bool    `json:"isMatch"`
	MatchID *string `json:"matchId"`
}

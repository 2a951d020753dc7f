package model

import "time"

// Match stores an unordered pair with User1ID < User2ID.
type Match struct {
	ID            string     `json:"id"`
	User1ID       string     `json:"user1"`
	User2ID       string     `json:"user2"`
	IsActive      bool       `json:"isActive"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (m Match) Other(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

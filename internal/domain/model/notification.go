package model

import "time"

type NotificationKind string

const (
	NotificationMatch     NotificationKind = "match"
	NotificationLike      NotificationKind = "like"
	NotificationSuperLike NotificationKind = "superlike"
)

// Notification is one outbound push waiting in the outbox.
type Notification struct {
	ID          string            `json:"id"`
	Kind        NotificationKind  `json:"kind"`
	RecipientID string            `json:"recipientId"`
	ActorID     string            `json:"actorId"`
	MatchID     string            `json:"matchId,omitempty"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	Attempt     int               `json:"attempt"`
	CreatedAt   time.Time         `json:"createdAt"`
}

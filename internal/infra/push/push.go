package push

import (
	"context"
	"errors"
)

var ErrNoDevice = errors.New("device token is empty")

// Message is a single mobile notification.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Pusher interface {
	Push(ctx context.Context, deviceToken string, msg Message) error
}

package push

import (
	"context"

	"go.uber.org/zap"
)

// LogPusher writes notifications to the log instead of delivering them.
// Used when no push provider is configured.
type LogPusher struct {
	logger *zap.Logger
}

func NewLogPusher(logger *zap.Logger) *LogPusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPusher{logger: logger}
}

func (p *LogPusher) Push(_ context.Context, deviceToken string, msg Message) error {
	if deviceToken == "" {
		return ErrNoDevice
	}
	p.logger.Info("push notification",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	return nil
}

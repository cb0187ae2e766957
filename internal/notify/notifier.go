// Package notify delivers human-readable alert messages to an operator.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier consumes fully formatted messages. Implementations log their own
// delivery failures; callers never retry.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log. It is the fallback when no
// webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier wires a zap logger to the Notifier interface.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info("Notification", zap.String("text", text))
	return nil
}

package notifications

import (
	"context"

	"github.com/teoalvarez/cartline-backend/pkg/logger"
)

// Email is an outbound message ready for delivery.
type Email struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Sender delivers emails. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// LogSender writes emails to the log instead of delivering them. Used in dev
// environments where no mail provider is configured.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a sender that only logs.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, email Email) error {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"to":      email.To,
		"subject": email.Subject,
	})
	s.logg.Info(logCtx, "email delivery skipped (log sender)")
	return nil
}

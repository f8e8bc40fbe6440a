package email

import (
	"context"
	"log/slog"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
)

// LogSender records sends in the log without delivering anything. Useful for
// local dev before an email provider is wired.
type LogSender struct {
	from string
}

// NewLogSender returns a new no-op email sender.
func NewLogSender(from string) *LogSender {
	return &LogSender{from: from}
}

func (s *LogSender) SendEmail(_ context.Context, to domain.SubscriberEmail, subject, _ string, _ string) error {
	slog.Debug("email::send", "from", s.from, "to", to.String(), "subject", subject)
	return nil
}

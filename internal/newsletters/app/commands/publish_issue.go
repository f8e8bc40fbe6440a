package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
)

// PublishIssueCommand carries the content of one newsletter issue.
type PublishIssueCommand struct {
	Title       string
	TextContent string
	HTMLContent string
}

// PublishResult reports how the delivery went.
type PublishResult struct {
	Delivered int `json:"delivered"`
	Skipped   int `json:"skipped"`
}

// CommandHandler executes a publish command.
type CommandHandler interface {
	Handle(ctx context.Context, cmd PublishIssueCommand) (*PublishResult, error)
}

// PublishIssueCommandHandler delivers an issue to every confirmed subscriber.
//
// This is the side-effecting work guarded by the idempotency claim protocol:
// the HTTP adapter invokes it only after winning a claim, so retried requests
// never send the same issue twice.
type PublishIssueCommandHandler struct {
	repo   ports.SubscriberRepository
	sender ports.EmailSender
	logger *slog.Logger
}

func NewPublishIssueCommandHandler(
	repo ports.SubscriberRepository,
	sender ports.EmailSender,
	logger *slog.Logger,
) *PublishIssueCommandHandler {
	return &PublishIssueCommandHandler{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

func (h *PublishIssueCommandHandler) Handle(ctx context.Context, cmd PublishIssueCommand) (*PublishResult, error) {
	issue := domain.Issue{
		Title:       cmd.Title,
		TextContent: cmd.TextContent,
		HTMLContent: cmd.HTMLContent,
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	subscribers, err := h.repo.ListConfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list confirmed subscribers: %w", err)
	}

	result := &PublishResult{}
	for _, record := range subscribers {
		email, err := domain.ParseSubscriberEmail(record.Email)
		if err != nil {
			// The stored contact details no longer parse. Skip the
			// subscriber instead of failing the whole issue.
			h.logger.WarnContext(ctx, "skipping confirmed subscriber with invalid stored email",
				"subscriber_id", record.ID,
				"error", err,
			)
			result.Skipped++
			continue
		}

		if err := h.sender.SendEmail(ctx, email, issue.Title, issue.HTMLContent, issue.TextContent); err != nil {
			return nil, fmt.Errorf("send newsletter issue to %s: %w", email, err)
		}
		result.Delivered++
	}

	return result, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejanmarkovic/herald/internal/newsletters/app/commands"
	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/metrics"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
	"github.com/google/uuid"
)

// Service bundles the newsletter use cases exposed over the API.
type Service struct {
	repo           ports.SubscriberRepository
	sender         ports.EmailSender
	publishHandler commands.CommandHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.SubscriberRepository,
	sender ports.EmailSender,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewPublishIssueCommandHandler(repo, sender, logger)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:           repo,
		sender:         sender,
		publishHandler: observableHandler,
	}
}

// PublishIssueInput captures the payload for publishing an issue.
type PublishIssueInput struct {
	Title       string `json:"title"`
	TextContent string `json:"text_content"`
	HTMLContent string `json:"html_content"`
}

// PublishIssue delivers an issue to every confirmed subscriber.
func (s *Service) PublishIssue(ctx context.Context, input PublishIssueInput) (*commands.PublishResult, error) {
	cmd := commands.PublishIssueCommand{
		Title:       input.Title,
		TextContent: input.TextContent,
		HTMLContent: input.HTMLContent,
	}
	return s.publishHandler.Handle(ctx, cmd)
}

// SubscribeInput captures the payload for a new subscription.
type SubscribeInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe registers a pending subscription and returns it, including the
// confirmation token the caller needs for the confirm step.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*domain.Subscriber, error) {
	email, err := domain.ParseSubscriberEmail(input.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.ParseSubscriberName(input.Name)
	if err != nil {
		return nil, err
	}

	subscriber := domain.Subscriber{
		ID:                uuid.New(),
		Email:             email,
		Name:              name,
		Status:            domain.StatusPendingConfirmation,
		ConfirmationToken: uuid.NewString(),
		SubscribedAt:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	return &subscriber, nil
}

// ConfirmSubscription flips a pending subscription to confirmed.
func (s *Service) ConfirmSubscription(ctx context.Context, token string) error {
	return s.repo.ConfirmByToken(ctx, token)
}

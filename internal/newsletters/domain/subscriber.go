package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriberStatus captures the lifecycle of a subscription.
type SubscriberStatus string

const (
	StatusPendingConfirmation SubscriberStatus = "pending_confirmation"
	StatusConfirmed           SubscriberStatus = "confirmed"
)

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID                uuid.UUID
	Email             SubscriberEmail
	Name              SubscriberName
	Status            SubscriberStatus
	ConfirmationToken string
	SubscribedAt      time.Time
}

// SubscriberEmail is a validated email address. Construction through
// ParseSubscriberEmail is the only validation point; any instance in
// circulation is known to be well formed.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates a raw email address.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SubscriberEmail{}, fmt.Errorf("email must not be empty")
	}
	at := strings.Index(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return SubscriberEmail{}, fmt.Errorf("%q is not a valid email address", raw)
	}
	if strings.ContainsAny(trimmed, " \t") {
		return SubscriberEmail{}, fmt.Errorf("%q is not a valid email address", raw)
	}
	return SubscriberEmail{value: trimmed}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

// SubscriberName is a validated display name.
type SubscriberName struct {
	value string
}

const maxNameLength = 256

// ParseSubscriberName rejects empty or whitespace-only names, names longer
// than 256 characters, and names containing characters with special meaning
// in URLs or markup.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, fmt.Errorf("name must not be empty")
	}
	if len([]rune(raw)) > maxNameLength {
		return SubscriberName{}, fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	if strings.ContainsAny(raw, `/()"<>\{}`) {
		return SubscriberName{}, fmt.Errorf("%q contains a forbidden character", raw)
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string {
	return n.value
}

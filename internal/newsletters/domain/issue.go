package domain

import (
	"errors"
	"strings"
)

// Issue is a newsletter issue to be delivered to every confirmed subscriber.
type Issue struct {
	Title       string `json:"title"`
	TextContent string `json:"text_content"`
	HTMLContent string `json:"html_content"`
}

// Validate ensures the issue has everything needed for delivery.
func (i Issue) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(i.TextContent) == "" {
		return errors.New("text_content is required")
	}
	if strings.TrimSpace(i.HTMLContent) == "" {
		return errors.New("html_content is required")
	}
	return nil
}

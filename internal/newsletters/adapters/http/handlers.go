package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dejanmarkovic/herald/internal/idempotency"
	"github.com/dejanmarkovic/herald/internal/newsletters/app"
	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/metrics"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
	"github.com/go-chi/chi/v5"
)

// Handler exposes HTTP endpoints for subscriptions and newsletter publishing.
type Handler struct {
	service  *app.Service
	requests idempotency.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, requests idempotency.Store, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		requests: requests,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds the handlers to the provided router. Publishing requires a
// principal; the gateway in front of this service is trusted to have
// authenticated it.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/subscriptions", h.subscribe)
	r.Post("/v1/subscriptions/confirm", h.confirmSubscription)
	r.With(RequirePrincipal).Post("/v1/newsletters", h.publishIssue)
}

// publishIssue is the idempotent write. A retried request with the same
// Idempotency-Key receives the recorded response byte for byte and no emails
// are sent again.
func (h *Handler) publishIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principalID, ok := PrincipalFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "principal required")
		return
	}

	key, err := idempotency.ParseKey(r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload app.PublishIssueInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	// Reject malformed issues before claiming, so a bad payload does not
	// burn the key.
	issue := domain.Issue{Title: payload.Title, TextContent: payload.TextContent, HTMLContent: payload.HTMLContent}
	if err := issue.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	action, err := h.requests.TryProcess(ctx, principalID, key)
	if err != nil {
		if errors.Is(err, idempotency.ErrClaimInFlight) {
			h.metrics.RecordIdempotencyOutcome(ctx, "in_flight")
			writeError(w, http.StatusInternalServerError, "a request with this idempotency key is still being processed")
			return
		}
		h.logger.ErrorContext(ctx, "idempotency claim failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch a := action.(type) {
	case idempotency.ReturnSavedResponse:
		h.metrics.RecordIdempotencyOutcome(ctx, "replayed")
		if err := a.Response.Write(w); err != nil {
			h.logger.ErrorContext(ctx, "failed to replay saved response", "error", err)
		}

	case idempotency.StartProcessing:
		h.processAndFinalize(w, r, a.Claim, payload)

	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// processAndFinalize runs the side-effecting work while holding the claim.
// Success finalizes the claim with the captured response, which commits the
// side effect marker and the response cache atomically. Failure rolls the
// claim back so the key stays reusable.
func (h *Handler) processAndFinalize(w http.ResponseWriter, r *http.Request, claim idempotency.Claim, payload app.PublishIssueInput) {
	ctx := r.Context()

	result, err := h.service.PublishIssue(ctx, payload)
	if err != nil {
		if rbErr := claim.Rollback(ctx); rbErr != nil {
			h.logger.ErrorContext(ctx, "failed to roll back claim", "error", rbErr)
		}
		h.metrics.RecordIdempotencyOutcome(ctx, "rolled_back")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rec := idempotency.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{
		"delivered": result.Delivered,
		"skipped":   result.Skipped,
	})
	captured := rec.Capture()

	if err := claim.Finalize(ctx, captured); err != nil {
		h.logger.ErrorContext(ctx, "failed to finalize claim", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordIdempotencyOutcome(ctx, "processed")
	if err := captured.Write(w); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var payload app.SubscribeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	subscriber, err := h.service.Subscribe(r.Context(), payload)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already subscribed")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":                 subscriber.ID,
		"email":              subscriber.Email.String(),
		"status":             subscriber.Status,
		"confirmation_token": subscriber.ConfirmationToken,
	})
}

func (h *Handler) confirmSubscription(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.service.ConfirmSubscription(r.Context(), payload.Token); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "confirmed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

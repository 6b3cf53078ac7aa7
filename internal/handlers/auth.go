package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/middleware"
	"clairon-backend/internal/models"
	"clairon-backend/internal/services"
)

type magicLinkService interface {
	SendMagicLink(ctx context.Context, email string) error
}

type AuthHandler struct {
	authService magicLinkService
	logger      *slog.Logger
}

func NewAuthHandler(authService magicLinkService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logging.OrDiscard(logger)}
}

func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req models.MagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.authService.SendMagicLink(r.Context(), req.Email); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for the magic link."})
}

// Callback finishes the implicit flow: tokens travel in the URL fragment,
// which never reaches the server, so the browser is simply sent home.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("auth callback", "query", r.URL.RawQuery)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.RateLimitError:
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", e.Message, r))
	case *services.UpstreamError:
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Could not send the magic link. Please try again.", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

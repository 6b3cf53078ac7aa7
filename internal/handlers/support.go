package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/models"
	"clairon-backend/internal/services"
)

type completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage) services.Reply
}

// SupportHandler is the chat proxy. For a well-formed request it always
// answers 200; only a missing or empty message list gets a 400.
type SupportHandler struct {
	completer completer
	logger    *slog.Logger
}

func NewSupportHandler(completer completer, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{completer: completer, logger: logging.OrDiscard(logger)}
}

func (h *SupportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in support handler", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
			writeJSON(w, http.StatusOK, models.SupportResponse{Response: services.FallbackInternal})
		}
	}()

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Error("unreadable support request body", "error", err)
		writeJSON(w, http.StatusOK, models.SupportResponse{Response: services.FallbackInternal})
		return
	}

	// Any valid JSON that is not an object carries no messages.
	var body struct {
		Messages json.RawMessage `json:"messages"`
	}
	if bytes.HasPrefix(raw, []byte("{")) {
		json.Unmarshal(raw, &body)
	}

	messages, ok := parseMessages(body.Messages)
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.SupportResponse{Response: services.ResponseNoMessages})
		return
	}

	reply := h.completer.Complete(r.Context(), messages)
	if reply.Outcome != services.OutcomeOK {
		h.logger.Warn("support reply degraded", "outcome", reply.Outcome.String(), "upstream_status", reply.Status, "error", reply.Err)
	}

	writeJSON(w, http.StatusOK, models.SupportResponse{Response: reply.Response()})
}

// parseMessages accepts only a non-empty JSON array of {role, content}.
func parseMessages(raw json.RawMessage) ([]models.ChatMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var messages []models.ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false
	}
	return messages, len(messages) > 0
}

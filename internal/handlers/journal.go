package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/middleware"
	"clairon-backend/internal/models"
)

type journalRepository interface {
	Create(ctx context.Context, e *models.JournalEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.JournalEntry, error)
}

type JournalHandler struct {
	repo   journalRepository
	logger *slog.Logger
}

func NewJournalHandler(repo journalRepository, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{repo: repo, logger: logging.OrDiscard(logger)}
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text json.RawMessage `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SimpleError{Error: "missing text"})
		return
	}

	var text string
	if len(body.Text) == 0 || json.Unmarshal(body.Text, &text) != nil || text == "" {
		writeJSON(w, http.StatusBadRequest, models.SimpleError{Error: "missing text"})
		return
	}

	entry := &models.JournalEntry{Text: text}
	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		entry.UserID = &userID
	}

	if err := h.repo.Create(r.Context(), entry); err != nil {
		h.logger.Error("journal insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.SimpleError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]uuid.UUID{"id": entry.ID})
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, models.SimpleError{Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	entries, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("journal list failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, models.SimpleError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

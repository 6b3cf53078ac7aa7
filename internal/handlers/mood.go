package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/middleware"
	"clairon-backend/internal/models"
)

type moodStore interface {
	InsertMood(ctx context.Context, log models.MoodLog) error
}

type MoodHandler struct {
	store  moodStore
	logger *slog.Logger
}

func NewMoodHandler(store moodStore, logger *slog.Logger) *MoodHandler {
	return &MoodHandler{store: store, logger: logging.OrDiscard(logger)}
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MoodLog
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SimpleError{Error: "Missing mood"})
		return
	}

	req.Mood = strings.TrimSpace(req.Mood)
	if req.Mood == "" {
		writeJSON(w, http.StatusBadRequest, models.SimpleError{Error: "Missing mood"})
		return
	}

	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		req.UserID = userID.String()
	}

	if err := h.store.InsertMood(r.Context(), req); err != nil {
		h.logger.Error("mood insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.SimpleError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Mood logged"})
}

func (h *MoodHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"moods": models.MoodOptions})
}

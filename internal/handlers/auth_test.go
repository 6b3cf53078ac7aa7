package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clairon-backend/internal/models"
	"clairon-backend/internal/services"
)

type stubMagicLink struct {
	err   error
	email string
}

func (s *stubMagicLink) SendMagicLink(ctx context.Context, email string) error {
	s.email = email
	return s.err
}

func TestAuthHandler_MagicLink(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		status   int
		wantCode string
	}{
		{"sent", `{"email":"ada@example.com"}`, nil, http.StatusOK, ""},
		{"invalid body", `{"email":`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid email", `{"email":"nope"}`, &services.ValidationError{Fields: map[string]string{"email": "Invalid email format"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"cooldown", `{"email":"ada@example.com"}`, &services.RateLimitError{Message: "wait"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"provider down", `{"email":"ada@example.com"}`, &services.UpstreamError{Message: "auth provider rejected magic link", Err: errors.New("500")}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unexpected", `{"email":"ada@example.com"}`, errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubMagicLink{err: tc.err}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/magic-link", strings.NewReader(tc.body))
			req.Header.Set("X-Request-ID", "req-1")
			rr := httptest.NewRecorder()
			h.MagicLink(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if tc.wantCode == "" {
				return
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, resp.Error.Code)
			}
			if resp.Error.RequestID != "req-1" {
				t.Fatalf("expected request id to be echoed, got %q", resp.Error.RequestID)
			}
		})
	}
}

func TestAuthHandler_Callback(t *testing.T) {
	h := NewAuthHandler(&stubMagicLink{}, nil)

	rr := httptest.NewRecorder()
	h.Callback(rr, httptest.NewRequest(http.MethodGet, "/auth/callback?type=magiclink", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

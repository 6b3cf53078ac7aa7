package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(userID uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  userID.String(),
		"role": "authenticated",
		"aud":  "authenticated",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
}

func TestSupabaseAuth_Middleware(t *testing.T) {
	auth := NewSupabaseAuth(testSecret)
	userID := uuid.New()

	expired := validClaims(userID)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims(userID)
	delete(noExp, "exp")

	badSub := validClaims(userID)
	badSub["sub"] = "not-a-uuid"

	tests := []struct {
		name     string
		header   string
		status   int
		wantCode string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.SigningMethodHS256, validClaims(userID)), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong algorithm", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS512, validClaims(userID)), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, expired), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"no expiry", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, noExp), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad subject", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, badSub), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"valid", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, validClaims(userID)), http.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotID uuid.UUID
			handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/journal", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if tc.wantCode != "" && !strings.Contains(rr.Body.String(), tc.wantCode) {
				t.Fatalf("expected code %s in body %s", tc.wantCode, rr.Body.String())
			}
			if tc.status == http.StatusOK && gotID != userID {
				t.Fatalf("expected user %s in context, got %s", userID, gotID)
			}
		})
	}
}

func TestSupabaseAuth_Optional(t *testing.T) {
	auth := NewSupabaseAuth(testSecret)
	userID := uuid.New()

	var gotID uuid.UUID
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/mood", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || gotID != uuid.Nil {
		t.Fatalf("anonymous request should pass with nil user, got %d %s", rr.Code, gotID)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/mood", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || gotID != uuid.Nil {
		t.Fatalf("invalid token should pass anonymously, got %d %s", rr.Code, gotID)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/mood", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, validClaims(userID)))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if gotID != userID {
		t.Fatalf("expected user %s, got %s", userID, gotID)
	}
}

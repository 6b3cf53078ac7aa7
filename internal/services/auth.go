package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"clairon-backend/internal/logging"
)

const magicLinkCooldown = 60 * time.Second

// MagicLinkSender is the slice of the hosted auth service used for sign-in.
type MagicLinkSender interface {
	SendMagicLink(ctx context.Context, email string) error
}

// cooldownStore is satisfied by *redis.Client.
type cooldownStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type AuthService struct {
	sender   MagicLinkSender
	cooldown cooldownStore
	logger   *slog.Logger
}

// NewAuthService wires magic-link sign-in. A nil redisClient disables the
// per-email resend cooldown.
func NewAuthService(sender MagicLinkSender, redisClient *redis.Client, logger *slog.Logger) *AuthService {
	s := &AuthService{sender: sender, logger: logging.OrDiscard(logger)}
	if redisClient != nil {
		s.cooldown = redisClient
	}
	return s
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SendMagicLink validates the address, enforces the resend cooldown and asks
// the auth provider to email a sign-in link.
func (s *AuthService) SendMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return &ValidationError{Fields: map[string]string{"email": "Invalid email format"}}
	}

	if s.cooldown != nil {
		ok, err := s.cooldown.SetNX(ctx, "magic_link_limit:"+email, "1", magicLinkCooldown).Result()
		if err != nil {
			// Redis being down must not block sign-in.
			s.logger.Warn("magic link cooldown check failed", "error", err)
		} else if !ok {
			return &RateLimitError{Message: "Please wait 60 seconds before requesting another magic link"}
		}
	}

	if err := s.sender.SendMagicLink(ctx, email); err != nil {
		s.logger.Error("magic link send failed", "error", err)
		return &UpstreamError{Message: "auth provider rejected magic link", Err: err}
	}

	s.logger.Info("magic link sent", "email_domain", emailDomain(email))
	return nil
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}

package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"clairon-backend/internal/models"
)

const moodLogsTable = "mood_logs"

// Config holds Supabase connection configuration
type Config struct {
	URL    string
	APIKey string // service-role key; server side only
}

// Client talks to the hosted auth and relational store.
type Client struct {
	client *supabase.Client
}

// New creates a new Supabase client
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{client: client}, nil
}

// InsertMood writes one row into mood_logs. The PostgREST client has no
// context support, so ctx does not cancel the request.
func (c *Client) InsertMood(ctx context.Context, log models.MoodLog) error {
	_, _, err := c.client.From(moodLogsTable).
		Insert(log, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert mood log: %w", err)
	}
	return nil
}

// SendMagicLink asks GoTrue to email a one-time sign-in link, creating the
// user on first sign-in. ctx is ignored, as in InsertMood.
func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	err := c.client.Auth.OTP(types.OTPRequest{
		Email:      email,
		CreateUser: true,
	})
	if err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// Close releases resources. The Supabase client holds none.
func (c *Client) Close() error {
	return nil
}

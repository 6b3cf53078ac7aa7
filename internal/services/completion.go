package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clairon-backend/internal/logging"
	"clairon-backend/internal/models"
)

const supportSystemPrompt = "You are a helpful, empathetic AI assistant for Clairon, a mental health and wellness app. " +
	"Provide supportive, understanding responses while being careful not to provide medical advice. " +
	"If someone is in crisis, encourage them to seek professional help."

// Outcome classifies how a completion attempt ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeDemo
	OutcomeUpstreamStatus
	OutcomeMalformed
	OutcomeInternal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDemo:
		return "demo"
	case OutcomeUpstreamStatus:
		return "upstream_status"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "internal"
	}
}

// Fallback texts, one per failure outcome.
const (
	FallbackDemo           = "Thanks for your message! I'm a demo AI assistant. In a real app, I would connect to an AI service to provide helpful responses."
	FallbackUpstreamStatus = "I apologize, but I'm having trouble connecting to my AI service right now. Please try again in a moment."
	FallbackMalformed      = "I apologize, but I didn't receive a proper response. Please try rephrasing your message."
	FallbackInternal       = "I apologize, but I encountered an unexpected error. Please try again later."
	ResponseNoMessages     = "No messages provided."
)

// FallbackText returns the user-facing text substituted for o.
// OutcomeOK has no fallback and yields "".
func FallbackText(o Outcome) string {
	switch o {
	case OutcomeOK:
		return ""
	case OutcomeDemo:
		return FallbackDemo
	case OutcomeUpstreamStatus:
		return FallbackUpstreamStatus
	case OutcomeMalformed:
		return FallbackMalformed
	default:
		return FallbackInternal
	}
}

// Reply is the result of one completion attempt. Err carries diagnostics
// for logging only and is never shown to the caller.
type Reply struct {
	Outcome Outcome
	Text    string
	Status  int
	Err     error
}

// Response is the text to deliver: the completion on success, the
// fallback for the outcome otherwise.
func (r Reply) Response() string {
	if r.Outcome == OutcomeOK {
		return r.Text
	}
	return FallbackText(r.Outcome)
}

// CompletionConfig configures the provider call. A nil Temperature means
// 0.7; zero values for MaxTokens and Timeout mean 500 and 30s.
type CompletionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	SiteURL     string
	AppTitle    string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
}

// CompletionService forwards a conversation to an OpenAI-compatible chat
// completions endpoint. It holds no per-request state.
type CompletionService struct {
	cfg         CompletionConfig
	temperature float64
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCompletionService(cfg CompletionConfig, httpClient *http.Client, logger *slog.Logger) *CompletionService {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	temperature := 0.7
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &CompletionService{
		cfg:         cfg,
		temperature: temperature,
		httpClient:  httpClient,
		logger:      logging.OrDiscard(logger),
	}
}

type completionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens"`
	Temperature float64              `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Configured reports whether a provider key is present.
func (s *CompletionService) Configured() bool {
	return s.cfg.APIKey != ""
}

// Complete sends messages, prefixed by the support system directive, to the
// provider. It never returns an error: every failure is folded into the
// Reply's Outcome.
func (s *CompletionService) Complete(ctx context.Context, messages []models.ChatMessage) Reply {
	if !s.Configured() {
		s.logger.Warn("OPENROUTER_API_KEY is not configured, answering in demo mode")
		return Reply{Outcome: OutcomeDemo}
	}

	payload := completionRequest{
		Model:       s.cfg.Model,
		Messages:    append([]models.ChatMessage{{Role: models.RoleSystem, Content: supportSystemPrompt}}, messages...),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return s.internal(fmt.Errorf("marshal completion request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return s.internal(fmt.Errorf("build completion request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", s.cfg.SiteURL)
	}
	if s.cfg.AppTitle != "" {
		req.Header.Set("X-Title", s.cfg.AppTitle)
	}

	s.logger.Debug("sending completion request", "model", s.cfg.Model, "messages", len(payload.Messages))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.internal(fmt.Errorf("send completion request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.internal(fmt.Errorf("read completion response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("provider returned status %d", resp.StatusCode)
		s.logger.Error("completion provider error", "status", resp.StatusCode, "body", string(respBody))
		return Reply{Outcome: OutcomeUpstreamStatus, Status: resp.StatusCode, Err: err}
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		s.logger.Error("completion response is not valid JSON", "error", err)
		return Reply{Outcome: OutcomeMalformed, Status: resp.StatusCode, Err: fmt.Errorf("decode completion response: %w", err)}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil ||
		parsed.Choices[0].Message.Content == nil || *parsed.Choices[0].Message.Content == "" {
		s.logger.Error("completion response has no content", "body", string(respBody))
		return Reply{Outcome: OutcomeMalformed, Status: resp.StatusCode, Err: fmt.Errorf("completion response missing choices[0].message.content")}
	}

	return Reply{Outcome: OutcomeOK, Text: *parsed.Choices[0].Message.Content, Status: resp.StatusCode}
}

func (s *CompletionService) internal(err error) Reply {
	s.logger.Error("completion request failed", "error", err)
	return Reply{Outcome: OutcomeInternal, Err: err}
}

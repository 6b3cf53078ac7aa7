package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn as it travels over the wire: role and content only.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Message is one turn held by a client-side conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Wire strips the timestamp.
func (m Message) Wire() ChatMessage {
	return ChatMessage{Role: m.Role, Content: m.Content}
}

// SupportRequest is the payload accepted by POST /api/support.
type SupportRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// SupportResponse is every reply of POST /api/support, success or not.
type SupportResponse struct {
	Response string `json:"response"`
}

package models

type MagicLinkRequest struct {
	Email string `json:"email"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// SimpleError is the flat {error} envelope used by the journal and mood routes.
type SimpleError struct {
	Error string `json:"error"`
}

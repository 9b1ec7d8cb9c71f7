package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginRecorded EventType = "login_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IdentityID string      `json:"identity_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// LoginRecordedPayload carries the audit details of a successful login.
type LoginRecordedPayload struct {
	Email     string `json:"email"`
	SourceIP  string `json:"source_ip"`
	UserAgent string `json:"user_agent"`
}

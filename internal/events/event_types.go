package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventTokenRefreshed  EventType = "token_refreshed"
	EventTokenRevoked    EventType = "token_revoked"
	EventProfileUpdated  EventType = "profile_updated"
	EventProductCreated  EventType = "product_created"
	EventProductUpdated  EventType = "product_updated"
	EventProductDeleted  EventType = "product_deleted"
	EventCategoryChanged EventType = "category_changed"
)

// AllEventTypes lists every event type, for subscribers that want everything.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserLoggedIn,
	EventTokenRefreshed,
	EventTokenRevoked,
	EventProfileUpdated,
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventCategoryChanged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TokenPayload carries token metadata; never the token itself.
type TokenPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Rotated   bool      `json:"rotated,omitempty"`
}

// ResourcePayload identifies a catalog record that changed.
type ResourcePayload struct {
	ResourceID string `json:"resource_id"`
	Name       string `json:"name,omitempty"`
	Action     string `json:"action,omitempty"`
}

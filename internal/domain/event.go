package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags an audit event.
type EventType string

const (
	EventReAdd  EventType = "RE_ADD"
	EventExport EventType = "EXPORT"
	EventImport EventType = "IMPORT"
)

// Event is an append-only audit record. The core only ever writes events;
// it never reads them back except to export them.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewEvent creates an audit event with a fresh ID.
func NewEvent(eventType EventType, payload map[string]any, now time.Time) *Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: now,
	}
}

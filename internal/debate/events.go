package debate

import (
	"encoding/json"
	"time"

	"debatearena/models"
)

// Event types pushed to session clients
const (
	EventSession  = "session"
	EventPresence = "presence"
)

// Event is the envelope written to websocket clients
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// PresencePayload reports how many connections watch a session
type PresencePayload struct {
	Connected int `json:"connected"`
}

// NewEvent creates a new event with timestamp
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// NewSessionEvent wraps a session snapshot
func NewSessionEvent(s models.Session) (*Event, error) {
	return NewEvent(EventSession, s)
}

// UnmarshalEvent decodes one websocket frame
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

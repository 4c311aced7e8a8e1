package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Event types received on the generation stream
const (
	EventGenerationStart = "generation_start"
	EventThought         = "thought"
	EventToken           = "generation_token"
	EventUIGenerated     = "ui_generated"
	EventComplete        = "complete"
	EventError           = "error"
	EventSystem          = "system"
	EventPong            = "pong"
)

// Outbound message types
const (
	MessageGenerateUI = "generate_ui"
	MessagePing       = "ping"
)

// Event is one inbound message of the generation stream
type Event struct {
	Type          string          `json:"type"`
	Message       string          `json:"message,omitempty"`
	Content       string          `json:"content,omitempty"`
	AppID         string          `json:"app_id,omitempty"`
	ApplicationID string          `json:"application_id,omitempty"`
	UISpec        json.RawMessage `json:"ui_spec,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
	Timestamp     int64           `json:"timestamp,omitempty"`
}

// ID returns whichever application id field the event carries
func (e Event) ID() string {
	if e.ApplicationID != "" {
		return e.ApplicationID
	}
	return e.AppID
}

// DecodeEvent parses a raw stream frame
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := sonic.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return ev, nil
}

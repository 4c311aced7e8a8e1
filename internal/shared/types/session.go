package types

import "time"

// AppSnapshot captures an installed app and its component state
type AppSnapshot struct {
	ID             string                 `json:"id"`
	Hash           string                 `json:"hash"` // Deterministic hash of the spec
	SessionID      string                 `json:"session_id"`
	ParentID       *string                `json:"parent_id,omitempty"`
	Title          string                 `json:"title"`
	UISpec         *AppSpec               `json:"ui_spec,omitempty"`
	ComponentState map[string]interface{} `json:"component_state,omitempty"`
	CapturedAt     time.Time              `json:"captured_at"`
	Children       []AppSnapshot          `json:"children,omitempty"`
}

// UIState captures generation progress for the presentation layer
type UIState struct {
	Status             string   `json:"status"`
	GenerationThoughts []string `json:"generation_thoughts,omitempty"`
	GenerationPreview  string   `json:"generation_preview,omitempty"`
	IsLoading          bool     `json:"is_loading"`
	Error              *string  `json:"error,omitempty"`
}

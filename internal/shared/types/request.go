package types

// ExecuteRequest is the service gateway payload
type ExecuteRequest struct {
	ToolID        string                 `json:"tool_id"`
	Params        map[string]interface{} `json:"params"`
	ApplicationID string                 `json:"application_id,omitempty"`
}

// SpawnContext links a generated app to its parent
type SpawnContext struct {
	ParentApplicationID string `json:"parent_application_id,omitempty"`
}

// UIRequest is the orchestrator generation payload
type UIRequest struct {
	Message string       `json:"message"`
	Context SpawnContext `json:"context"`
}

// UIResponse is the orchestrator generation reply
type UIResponse struct {
	AppID         string   `json:"app_id,omitempty"`
	ApplicationID string   `json:"application_id,omitempty"`
	UISpec        *AppSpec `json:"ui_spec,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// ID returns whichever id field the orchestrator populated
func (r *UIResponse) ID() string {
	if r.ApplicationID != "" {
		return r.ApplicationID
	}
	return r.AppID
}

// WSMessage is an outbound message on the generation stream
type WSMessage struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

package session

import (
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/tools"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

// Event is a notification for the presentation layer.
//
// For spawn_app, SessionID is the new child session. For close_app from a
// child, SessionID is the closed child; from a root session it asks the
// host to close that session.
type Event struct {
	Kind      tools.NotificationKind `json:"kind"`
	SessionID id.SessionID           `json:"session_id"`
	AppID     string                 `json:"application_id,omitempty"`
	Spec      *types.AppSpec         `json:"ui_spec,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

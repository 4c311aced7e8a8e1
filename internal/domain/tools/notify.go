package tools

import "github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"

// NotificationKind names a session notification
type NotificationKind string

const (
	NotifyAlert NotificationKind = "alert"
	NotifySpawn NotificationKind = "spawn_app"
	NotifyClose NotificationKind = "close_app"
)

// Notification is a message from a tool to the hosting session
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	AppID   string           `json:"application_id,omitempty"`
	Spec    *types.AppSpec   `json:"ui_spec,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Notifier delivers notifications to whoever hosts the executor
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

// Notify calls f
func (f NotifierFunc) Notify(n Notification) { f(n) }

// NopNotifier drops everything
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(Notification) {}

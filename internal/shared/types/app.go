package types

import "time"

// State represents app lifecycle states as reported by the orchestrator
type State string

const (
	StateSpawning   State = "spawning"
	StateActive     State = "active"
	StateBackground State = "background"
	StateSuspended  State = "suspended"
	StateDestroyed  State = "destroyed"
)

// App is a running application as listed by the orchestrator
type App struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	State     State    `json:"state"`
	ParentID  *string  `json:"parent_id,omitempty"`
	CreatedAt float64  `json:"created_at"` // unix seconds
	Services  []string `json:"services,omitempty"`
}

// Created converts CreatedAt to a time
func (a App) Created() time.Time {
	sec := int64(a.CreatedAt)
	return time.Unix(sec, int64((a.CreatedAt-float64(sec))*1e9))
}

// AppList is the orchestrator GET /apps reply
type AppList struct {
	Apps  []App                  `json:"apps"`
	Stats map[string]interface{} `json:"stats,omitempty"`
}

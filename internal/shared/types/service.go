package types

// Category is the routing prefix of a tool id
type Category string

const (
	CategoryStorage Category = "storage"
	CategoryAuth    Category = "auth"
	CategoryAI      Category = "ai"
	CategorySync    Category = "sync"
	CategoryMedia   Category = "media"

	CategoryCalc   Category = "calc"
	CategoryUI     Category = "ui"
	CategorySystem Category = "system"
	CategoryApp    Category = "app"
	CategoryHTTP   Category = "http"
	CategoryTimer  Category = "timer"
)

// RemoteCategories are always delegated to the service gateway
var RemoteCategories = []Category{
	CategoryStorage,
	CategoryAuth,
	CategoryAI,
	CategorySync,
	CategoryMedia,
}

// IsRemote reports whether tools in c run on the service gateway
func (c Category) IsRemote() bool {
	for _, r := range RemoteCategories {
		if c == r {
			return true
		}
	}
	return false
}

// Context carries the session binding for a tool invocation
type Context struct {
	AppID     string `json:"application_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Result is the service gateway response envelope
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
}

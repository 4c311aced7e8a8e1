package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

// ErrUnknownTool is returned by Resolve for unregistered tools
var ErrUnknownTool = errors.New("unknown tool")

// Handler runs one built-in action
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Provider contributes the actions of one built-in category
type Provider interface {
	Category() types.Category
	Handlers() map[string]Handler
}

// Registry maps (category, action) pairs to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[types.Category]map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[types.Category]map[string]Handler)}
}

// Register adds every action of a provider, replacing existing ones
func (r *Registry) Register(p Provider) error {
	category := p.Category()
	if category == "" {
		return fmt.Errorf("provider category cannot be empty")
	}
	if category.IsRemote() {
		return fmt.Errorf("category %s is served by the service gateway", category)
	}
	for action, h := range p.Handlers() {
		r.Handle(category, action, h)
	}
	return nil
}

// Handle registers a single action
func (r *Registry) Handle(category types.Category, action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	actions, ok := r.handlers[category]
	if !ok {
		actions = make(map[string]Handler)
		r.handlers[category] = actions
	}
	actions[action] = h
}

// Resolve returns the handler for a tool id
func (r *Registry) Resolve(toolID string) (Handler, error) {
	category, action, ok := SplitToolID(toolID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, toolID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[category][action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
	}
	return h, nil
}

// Tools lists every registered tool id in sorted order
func (r *Registry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for category, actions := range r.handlers {
		for action := range actions {
			out = append(out, string(category)+"."+action)
		}
	}
	sort.Strings(out)
	return out
}

// SplitToolID splits on the first '.'; both halves must be non-empty
func SplitToolID(toolID string) (types.Category, string, bool) {
	parts := strings.SplitN(toolID, ".", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return types.Category(parts[0]), parts[1], true
}

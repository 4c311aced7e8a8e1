package types

// ComponentType names a component kind in the declarative tree
type ComponentType string

const (
	ComponentContainer ComponentType = "container"
	ComponentGrid      ComponentType = "grid"
	ComponentText      ComponentType = "text"
	ComponentButton    ComponentType = "button"
	ComponentInput     ComponentType = "input"
	ComponentTextarea  ComponentType = "textarea"
	ComponentSelect    ComponentType = "select"
	ComponentCheckbox  ComponentType = "checkbox"
	ComponentImage     ComponentType = "image"
	ComponentList      ComponentType = "list"
	ComponentCard      ComponentType = "card"
	ComponentIframe    ComponentType = "iframe"
	ComponentCanvas    ComponentType = "canvas"

	// ComponentUnknown is reported for any type outside the known set
	ComponentUnknown ComponentType = "unknown"
)

var knownComponents = map[ComponentType]struct{}{
	ComponentContainer: {},
	ComponentGrid:      {},
	ComponentText:      {},
	ComponentButton:    {},
	ComponentInput:     {},
	ComponentTextarea:  {},
	ComponentSelect:    {},
	ComponentCheckbox:  {},
	ComponentImage:     {},
	ComponentList:      {},
	ComponentCard:      {},
	ComponentIframe:    {},
	ComponentCanvas:    {},
}

// Kind returns the type if recognized, ComponentUnknown otherwise.
// The raw value is kept so specs round-trip unchanged.
func (t ComponentType) Kind() ComponentType {
	if _, ok := knownComponents[t]; ok {
		return t
	}
	return ComponentUnknown
}

// UIComponent is one node of the component tree
type UIComponent struct {
	ID       string                 `json:"id" yaml:"id" toml:"id"`
	Type     ComponentType          `json:"type" yaml:"type" toml:"type"`
	Props    map[string]interface{} `json:"props,omitempty" yaml:"props,omitempty" toml:"props,omitempty"`
	Children []UIComponent          `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
	OnEvent  map[string]string      `json:"on_event,omitempty" yaml:"on_event,omitempty" toml:"on_event,omitempty"`
}

// Prop returns a prop value or def when missing
func (c *UIComponent) Prop(name string, def interface{}) interface{} {
	if v, ok := c.Props[name]; ok && v != nil {
		return v
	}
	return def
}

// ToolFor returns the tool bound to an event, if any
func (c *UIComponent) ToolFor(event string) (string, bool) {
	tool, ok := c.OnEvent[event]
	return tool, ok && tool != ""
}

// LifecycleHooks lists tool ids run at install and teardown
type LifecycleHooks struct {
	OnMount   []string `json:"on_mount,omitempty" yaml:"on_mount,omitempty" toml:"on_mount,omitempty"`
	OnUnmount []string `json:"on_unmount,omitempty" yaml:"on_unmount,omitempty" toml:"on_unmount,omitempty"`
}

// AppSpec is a complete generated application
type AppSpec struct {
	Type            string                 `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Title           string                 `json:"title" yaml:"title" toml:"title"`
	Layout          string                 `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
	Style           map[string]interface{} `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
	Components      []UIComponent          `json:"components" yaml:"components" toml:"components"`
	Services        []string               `json:"services,omitempty" yaml:"services,omitempty" toml:"services,omitempty"`
	ServiceBindings map[string]string      `json:"service_bindings,omitempty" yaml:"service_bindings,omitempty" toml:"service_bindings,omitempty"`
	LifecycleHooks  LifecycleHooks         `json:"lifecycle_hooks" yaml:"lifecycle_hooks" toml:"lifecycle_hooks"`
}

// Normalize fills the defaults the generator may omit
func (s *AppSpec) Normalize() {
	if s.Type == "" {
		s.Type = "app"
	}
	if s.Layout == "" {
		s.Layout = "vertical"
	}
	if s.Title == "" {
		s.Title = "Untitled App"
	}
}

// Walk visits every component depth-first in document order.
// Returning false from fn stops the walk.
func (s *AppSpec) Walk(fn func(c *UIComponent, depth int) bool) {
	var visit func(list []UIComponent, depth int) bool
	visit = func(list []UIComponent, depth int) bool {
		for i := range list {
			if !fn(&list[i], depth) {
				return false
			}
			if !visit(list[i].Children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(s.Components, 0)
}

// Find returns the component with the given id
func (s *AppSpec) Find(id string) (*UIComponent, bool) {
	var found *UIComponent
	s.Walk(func(c *UIComponent, _ int) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// Count returns the number of components in the tree
func (s *AppSpec) Count() int {
	n := 0
	s.Walk(func(*UIComponent, int) bool {
		n++
		return true
	})
	return n
}

// Clone returns a deep copy of the spec
func (s *AppSpec) Clone() *AppSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Style = cloneMap(s.Style)
	out.Components = cloneComponents(s.Components)
	out.Services = cloneStrings(s.Services)
	out.ServiceBindings = cloneStringMap(s.ServiceBindings)
	out.LifecycleHooks = LifecycleHooks{
		OnMount:   cloneStrings(s.LifecycleHooks.OnMount),
		OnUnmount: cloneStrings(s.LifecycleHooks.OnUnmount),
	}
	return &out
}

func cloneComponents(list []UIComponent) []UIComponent {
	if list == nil {
		return nil
	}
	out := make([]UIComponent, len(list))
	for i, c := range list {
		out[i] = UIComponent{
			ID:       c.ID,
			Type:     c.Type,
			Props:    cloneMap(c.Props),
			Children: cloneComponents(c.Children),
			OnEvent:  cloneStringMap(c.OnEvent),
		}
	}
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return cloneStrings(t)
	default:
		return v
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

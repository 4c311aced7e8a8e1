package blueprint

import (
	"fmt"
	"strings"
)

// Expander converts blueprint shorthand into the ui_spec layout.
//
// Components may be written as a plain string (a text component), in the
// explicit form {"type": "button", "id": ..., "props": ..., "on_event": ...},
// or as {"button#id": {props}} where "@click" keys become event bindings
// and "$template" merges a named template under the props.
type Expander struct {
	templates map[string]interface{}
	next      int
}

// NewExpander creates an expander
func NewExpander() *Expander {
	return &Expander{templates: make(map[string]interface{})}
}

// containerRoles are shorthand names that become containers with a role prop
var containerRoles = map[string]bool{
	"sidebar": true, "main": true, "editor": true, "header": true,
	"footer": true, "content": true, "section": true,
}

// Expand converts a blueprint "ui" section
func (e *Expander) Expand(ui map[string]interface{}, services interface{}) map[string]interface{} {
	e.next = 0
	if templates, ok := ui["templates"].(map[string]interface{}); ok {
		e.templates = templates
	}

	layout, _ := ui["layout"].(string)
	if layout == "" {
		layout = "vertical"
	}
	components, _ := ui["components"].([]interface{})

	out := map[string]interface{}{
		"type":            "app",
		"title":           ui["title"],
		"layout":          layout,
		"components":      e.components(components),
		"lifecycle_hooks": hooks(ui["lifecycle"]),
	}
	if names := serviceNames(services); len(names) > 0 {
		out["services"] = names
	}
	return out
}

// hooks accepts a single tool id or a list per phase
func hooks(v interface{}) map[string]interface{} {
	lifecycle, _ := v.(map[string]interface{})
	out := make(map[string]interface{}, len(lifecycle))
	for phase, action := range lifecycle {
		switch a := action.(type) {
		case string:
			out[phase] = []string{a}
		case []interface{}:
			ids := make([]string, 0, len(a))
			for _, item := range a {
				if s, ok := item.(string); ok {
					ids = append(ids, s)
				}
			}
			out[phase] = ids
		}
	}
	return out
}

// serviceNames accepts "storage" or {"storage": [...]} entries
func serviceNames(v interface{}) []string {
	list, _ := v.([]interface{})
	var names []string
	for _, item := range list {
		switch s := item.(type) {
		case string:
			names = append(names, s)
		case map[string]interface{}:
			for name := range s {
				names = append(names, name)
			}
		}
	}
	return names
}

func (e *Expander) components(list []interface{}) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		if c := e.component(item); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (e *Expander) autoID(kind string) string {
	id := fmt.Sprintf("%s-%d", kind, e.next)
	e.next++
	return id
}

func (e *Expander) component(item interface{}) map[string]interface{} {
	switch v := item.(type) {
	case string:
		return map[string]interface{}{
			"type":  "text",
			"id":    e.autoID("text"),
			"props": map[string]interface{}{"content": v},
		}
	case map[string]interface{}:
		if kind, ok := v["type"].(string); ok {
			return e.explicit(kind, v)
		}
		if len(v) == 1 {
			for key, props := range v {
				if m, ok := props.(map[string]interface{}); ok {
					return e.shorthand(key, m)
				}
			}
		}
	}
	return nil
}

func (e *Expander) explicit(kind string, v map[string]interface{}) map[string]interface{} {
	props, _ := v["props"].(map[string]interface{})
	if props == nil {
		props = map[string]interface{}{}
	}
	id, _ := v["id"].(string)
	if id == "" {
		id = e.autoID(kind)
	}

	out := map[string]interface{}{"type": kind, "id": id, "props": props}
	if events, ok := v["on_event"].(map[string]interface{}); ok && len(events) > 0 {
		out["on_event"] = events
	}
	if children, ok := v["children"].([]interface{}); ok && len(children) > 0 {
		out["children"] = e.components(children)
	}
	return out
}

func (e *Expander) shorthand(key string, props map[string]interface{}) map[string]interface{} {
	kind, id, _ := strings.Cut(key, "#")
	props = e.applyTemplate(props)

	extra := map[string]interface{}{}
	switch {
	case kind == "row":
		kind = "container"
		extra["layout"] = "horizontal"
	case kind == "col":
		kind = "container"
		extra["layout"] = "vertical"
	case containerRoles[kind]:
		extra["role"] = kind
		kind = "container"
		if _, ok := props["layout"]; !ok {
			extra["layout"] = "vertical"
		}
	}

	clean := make(map[string]interface{}, len(props)+len(extra))
	events := make(map[string]interface{})
	var children []interface{}
	for k, val := range props {
		switch {
		case strings.HasPrefix(k, "@"):
			events[strings.TrimPrefix(k, "@")] = val
		case k == "children":
			list, _ := val.([]interface{})
			children = e.components(list)
		case strings.HasPrefix(k, "$"):
			// $if and $for are presentation directives
		default:
			clean[k] = val
		}
	}
	for k, val := range extra {
		clean[k] = val
	}

	if id == "" {
		id = e.autoID(kind)
	}
	out := map[string]interface{}{"type": kind, "id": id, "props": clean}
	if len(events) > 0 {
		out["on_event"] = events
	}
	if len(children) > 0 {
		out["children"] = children
	}
	return out
}

// applyTemplate merges a "$template" reference under props
func (e *Expander) applyTemplate(props map[string]interface{}) map[string]interface{} {
	name, ok := props["$template"].(string)
	if !ok {
		return props
	}
	template, ok := e.templates[name].(map[string]interface{})
	if !ok {
		return props
	}

	merged := make(map[string]interface{}, len(template)+len(props))
	for k, v := range template {
		merged[k] = v
	}
	for k, v := range props {
		if k != "$template" {
			merged[k] = v
		}
	}
	return merged
}

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	typeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	idStyle    = lipgloss.NewStyle().Bold(true)
	bindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// renderTree draws the component tree, each component annotated with its
// event bindings and current state value, followed by any state that is
// not tied to a component.
func renderTree(appID string, spec *types.AppSpec, state map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", spec.Title, appID)))
	b.WriteString("\n")

	shown := make(map[string]bool)
	var walk func(list []types.UIComponent, prefix string)
	walk = func(list []types.UIComponent, prefix string) {
		for i := range list {
			c := &list[i]
			last := i == len(list)-1
			branch, indent := "├── ", "│   "
			if last {
				branch, indent = "└── ", "    "
			}

			line := typeStyle.Render(string(c.Type))
			if c.ID != "" {
				line += " " + idStyle.Render("#"+c.ID)
			}
			if binds := bindings(c); binds != "" {
				line += " " + bindStyle.Render(binds)
			}
			if v, ok := state[c.ID]; ok && c.ID != "" {
				line += " = " + stateStyle.Render(fmt.Sprint(v))
				shown[c.ID] = true
			}
			b.WriteString(prefix + branch + line + "\n")
			walk(c.Children, prefix+indent)
		}
	}
	walk(spec.Components, "")

	var rest []string
	for k, v := range state {
		if !shown[k] {
			rest = append(rest, fmt.Sprintf("%s = %v", k, v))
		}
	}
	if len(rest) > 0 {
		sort.Strings(rest)
		b.WriteString(boxStyle.Render(strings.Join(rest, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func bindings(c *types.UIComponent) string {
	if len(c.OnEvent) == 0 {
		return ""
	}
	events := make([]string, 0, len(c.OnEvent))
	for ev, tool := range c.OnEvent {
		events = append(events, "@"+ev+"→"+tool)
	}
	sort.Strings(events)
	return strings.Join(events, " ")
}

// Package types provides the data shapes shared across the runtime.
//
// Spec Model:
//   - AppSpec: an installed application (title, layout, style, components, hooks)
//   - UIComponent: one node of the declarative component tree
//   - ComponentType: fixed component kinds with an "unknown" fallback
//   - LifecycleHooks: tool ids run on mount and unmount
//
// Wire Types:
//   - ExecuteRequest, Result: service gateway envelope
//   - UIRequest, UIResponse, AppList: orchestrator envelope
//   - WSMessage: outbound generation stream message
//
// Snapshots:
//   - AppSnapshot: installed spec plus component state
//   - UIState: generation progress (thoughts, loading, error)
//
// The model carries no behavior beyond tree traversal helpers.
//
// Example Usage:
//
//	spec := &types.AppSpec{
//	    Title: "Calculator",
//	    Components: []types.UIComponent{
//	        {ID: "display", Type: types.ComponentInput},
//	    },
//	}
//	spec.Normalize()
package types

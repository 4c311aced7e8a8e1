// Package state provides the component-state store of a session.
//
// One Store exists per session. It is cleared, never recreated, when a new
// app spec is installed, so no value or listener survives an install.
// Component ids double as state keys: an input with id "display" reads and
// writes the "display" key.
//
//	store := state.NewStore()
//	unsubscribe := store.Subscribe("display", func(v interface{}) {
//	    render(v)
//	})
//	store.Set("display", "42")
//	unsubscribe()
package state

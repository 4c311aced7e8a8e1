// Package protocol implements the generation state machine of a session.
//
// States move idle -> requesting -> generating -> ready or failed, and back
// to requesting on every new Generate call. Inbound events:
//
//	generation_start{message}   enter generating, restart the thought log
//	thought{content}            append to the thought log
//	generation_token{content}   append to the preview text
//	ui_generated{app_id, ui_spec}
//	                            install the spec; loading stays true
//	complete{}                  clear loading, ready
//	error{message}              record the error, clear loading, failed
//
// Generate stamps each request with a request id. Events tagged with any
// other request id are stale and dropped; untagged events are accepted.
//
// Install runs in a fixed order: unmount the previous app, clear the store,
// cancel all timers, set the active spec, bind the application id, mount.
package protocol

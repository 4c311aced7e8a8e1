// Package transport is the duplex websocket link to the generation stream.
//
// Outbound messages are JSON objects ({"type":"generate_ui",...} and
// {"type":"ping"}); inbound frames are handed raw to the caller, which
// decodes them as protocol events. Maintain redials on failure so a session
// can outlive the stream.
package transport

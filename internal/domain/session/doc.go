// Package session composes the runtime pieces into a live app host.
//
// A Session owns one state store, one timer registry, one tool executor
// and the lifecycle and protocol controllers on top of them. The store and
// executor live as long as the session; installs only clear and rebind them.
//
// Spawned apps become child sessions. Notifications between a child and its
// parent travel on the parent's inbox channel, so a close request from a
// child only ever reaches the session that spawned it. Closing a session
// closes its children first, runs on_unmount hooks and cancels every timer.
package session

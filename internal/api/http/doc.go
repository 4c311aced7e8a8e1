// Package http exposes a running session to the presentation layer.
//
// The presentation layer renders the installed spec (GET /spec), reads and
// writes component state (/state), forwards component events (POST /events)
// and listens for alerts and spawned apps on GET /notifications.
package http

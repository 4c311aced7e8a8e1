// Package timers schedules deferred tool invocations for a session.
//
// Every handle a session creates lives in its Registry, so installing a new
// app or closing the session cancels all of them with CancelAll. Callbacks
// run on their own goroutine; a callback already running when its timer is
// cancelled is not interrupted.
package timers

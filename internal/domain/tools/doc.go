// Package tools dispatches tool ids of the form "category.action".
//
// Remote categories (storage, auth, ai, sync, media) are posted to the
// service gateway together with the bound application id. Every other
// category is looked up in a Registry of built-in handlers:
//
//	calc    arithmetic and the calculator display
//	ui      state pass-through, text editing and the todo list
//	system  alert and log
//	app     spawn, close and list through the orchestrator
//	http    get and post passthrough
//	timer   deferred and repeating tool invocations
//
// Executor.Execute isolates every call. A failure or panic is logged with
// its elapsed time, written to the "error" state key and turned into a nil
// result. Unknown tools also return nil.
package tools

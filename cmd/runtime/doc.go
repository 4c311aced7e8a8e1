// Command runtime hosts generated apps.
//
// serve connects to the generation stream and exposes the host API:
//
//	BACKEND_URL=http://localhost:8000 STREAM_URL=ws://localhost:8000/stream runtime serve
//
// run installs a local spec file, optionally fires component events, and
// prints the component tree with its state:
//
//	runtime run --spec apps/calculator.bp --event seven:click --event eval:click
//
// Configuration comes from the environment (see internal/infrastructure/config);
// flags override it. SIGINT and SIGTERM shut down gracefully.
package main

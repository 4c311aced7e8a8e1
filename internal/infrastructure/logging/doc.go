// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so the CLI can print trees on stdout.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	log := logger.ForSession(string(sessionID))
//	log.Info("Spec installed", zap.String("app_id", appID))
package logging

// Package logging provides structured logging for the plantnode daemon and CLI.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the node. It provides both general logging functions
// and specialized functions for the station and REST layers.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (response bytes, tick timing)
//   - Info: Normal operations (requests, commands, link transitions)
//   - Warn: Non-fatal issues (rejected arguments, reconnect attempts)
//   - Error: Fatal issues (startup failures, listener errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Service started",
//	    zap.String("addr", ":80"),
//	    zap.Int("routes", 8),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogHTTPRequest(remoteAddr, "POST", "/color", args)
//	logging.LogCommand("color", "blue", 0x0a)
//	logging.LogLinkEvent("connected", "disconnected", "link lost")
//	logging.LogPortalEvent("credentials_received")
//
// # Configuration
//
// Initialize logging at daemon startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands should use InitializeFromEnv so output stays silent unless
// PLANTNODE_LOG_LEVEL is set.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging

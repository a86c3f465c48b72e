// Package logging provides structured logging utilities for inboxreceipts.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once from CLI flags:
//
//	logger := logging.New(os.Stderr, logging.FormatJSON, debug)
//
// Tag records with the run and the message being processed:
//
//	logger = logging.WithRunID(logger, runID)
//	logger.Info("attachment saved",
//	    logging.MessageID(id),
//	    logging.Filename(name),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
//   - User emails are hashed to prevent PII leakage while allowing correlation
//   - Bearer tokens are never logged directly, only their length
package logging

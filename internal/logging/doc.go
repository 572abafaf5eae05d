// Package logging provides a simple leveled logging interface for the
// linkcard service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable.
//
// DevError is a separate channel for contract violations (programmer
// errors): it logs loudly, increments a metric, and the caller degrades to
// a default value instead of failing.
package logging

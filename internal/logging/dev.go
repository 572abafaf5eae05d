package logging

import (
	"log"

	"linkcard/internal/metrics"
)

// DevError reports a contract violation: a precondition the programmer was
// expected to uphold did not hold (image data requested on an unloaded
// preview, a required field absent on a supposedly-complete record, and so
// on). The caller degrades to a safe default value; nothing is thrown and
// the process never terminates over one of these.
//
// The message is always logged at error level with a [DEV] marker so it is
// loud in development, and counted so it is visible in production metrics.
func DevError(format string, args ...interface{}) {
	metrics.DeveloperErrorsTotal.Inc()
	log.Printf("[ERROR] [DEV] "+format, args...)
}

// DevErrorIf reports a contract violation only when cond is true, and
// returns cond so callers can bail out in one line:
//
//	if logging.DevErrorIf(s.data == nil, "no draft image data") {
//		return Size{}
//	}
func DevErrorIf(cond bool, format string, args ...interface{}) bool {
	if cond {
		DevError(format, args...)
	}
	return cond
}

// Package startup handles environment-variable configuration, directory
// validation, build information, and startup/shutdown logging for the
// linkcard service.
package startup

// Package logging builds the process-wide slog logger and provides
// secret redaction so scanned values never appear verbatim in logs.
package logging

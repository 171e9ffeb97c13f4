// Package retention enforces retention limits on the audit log.
//
// The Pruner deletes entries older than the configured retention window and
// trims the log down to a maximum entry count, oldest first. The Scheduler
// runs the pruner on a cron schedule. Retention never touches the decision
// path: pruning is the only deletion the audit log permits.
package retention

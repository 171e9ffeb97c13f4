// Package audit defines the append-only audit log for upload permission
// decisions.
//
// Every call to the permission manager's CheckUploadPermission produces
// exactly one Entry. Entries are owned by the permission manager; callers
// read them through filtered queries and never mutate them. The only
// deletion path is retention pruning (see the retention subpackage).
//
// Two storage backends are provided: an in-memory slice for tests and
// single-session use, and a SQLite backend for logs that survive restarts.
package audit

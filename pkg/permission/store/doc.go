// Package store provides directory policy persistence backends.
//
// Two implementations of permission.PolicyStore are available:
//
//   - MemoryStore: in-memory map, suitable for tests and ephemeral use
//   - SQLiteStore: durable single-file storage using modernc.org/sqlite
//
// Both backends are safe for concurrent use and treat DirectoryID as the
// unique key: Set replaces any existing policy for the same directory.
package store

// Package export provides exporters for audit log entries.
//
// Exporters render entries for the privacy settings UI and for compliance
// review outside the application. JSON preserves the full entry; CSV is a
// flat tabular form.
package export

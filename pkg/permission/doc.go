// Package permission implements the upload permission manager, the
// orchestrating component of the egress gate.
//
// Given a scan result and request metadata, the manager applies a fixed
// decision precedence: local destinations are exempt, then the session
// cache, then the directory policy, then risk-based evaluation of the scan
// result. Every check appends exactly one audit entry before returning.
//
// The manager owns the directory policy store, the session cache, and the
// audit log exclusively. Decisions and their audit entries are totally
// ordered by call order; all mutation is serialized behind one mutex.
package permission

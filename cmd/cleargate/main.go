// Cleargate is a local egress gate for LLM chat clients.
//
// It inspects content before it leaves the device, providing:
//   - Sensitive data detection (API keys, credentials, PII)
//   - Prompt injection and invisible Unicode sanitization
//   - Directory-scoped upload permission policies
//   - An append-only audit trail of every decision
//
// Usage:
//
//	# Scan text for sensitive data
//	cleargate scan secrets.txt
//
//	# Sanitize untrusted input
//	cleargate sanitize pasted.txt
//
//	# Run a full upload permission check
//	cleargate check --file-id f1 --dir-id d1 --destination cloud report.txt
//
//	# Manage directory policies
//	cleargate policy list
//	cleargate policy set --dir-id d1 --path /home/user/docs always-allow
//
//	# Query the audit log
//	cleargate audit query --decision denied --format json
//
//	# Run the gate daemon (policy watcher, retention, metrics)
//	cleargate run
package main

func main() {
	Execute()
}

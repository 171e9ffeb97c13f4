// Package sanitizer provides layered textual defense against prompt
// injection and invisible-Unicode abuse.
//
// Sanitize runs three fixed layers over the input: length limits, invisible
// Unicode stripping, and injection pattern detection against the normalized
// text. Every layer always runs; detection never short-circuits the
// pipeline, and the sanitized text is returned even when the input scores
// as unsafe. The caller decides what to do with an unsafe result.
//
// SanitizeRAGContext is a narrower stripping-only transform for untrusted
// retrieved documents: chat-role markers and template delimiters are
// rewritten in place rather than reported.
package sanitizer

package logging

import "regexp"

// Redactor masks secrets in log output so the gate never leaks through
// its own logs the values it exists to protect.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with the built-in secret patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{
				name:        "api_key",
				regex:       regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`),
				replacement: "sk-***",
			},
			{
				name:        "aws_key",
				regex:       regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
				replacement: "AKIA***",
			},
			{
				name:        "bearer_token",
				regex:       regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{8,}=*`),
				replacement: "Bearer ***",
			},
			{
				name:        "password",
				regex:       regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[:=]\s*\S+`),
				replacement: "$1=***",
			},
			{
				name:        "ssn",
				regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
				replacement: "***-**-****",
			},
		},
	}
}

// Redact replaces every secret occurrence in s with its mask.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

package detector

import "regexp"

// pattern is a single detection rule: a category tag, a fixed risk level,
// and a compiled matcher. Rules are evaluated in slice order.
type pattern struct {
	category MatchType
	risk     RiskLevel
	regex    *regexp.Regexp
}

// builtinPatterns returns the ordered built-in detection rules. The slice is
// freshly allocated so each detector instance can apply its own severity
// overrides without touching package state.
func builtinPatterns() []pattern {
	return []pattern{
		// Anthropic API keys. Listed before the OpenAI rule so the longer
		// prefix wins.
		{
			category: MatchAPIKey,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{95}`),
		},

		// OpenAI API keys.
		{
			category: MatchAPIKey,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`\bsk-[A-Za-z0-9]{48}\b`),
		},

		// AWS access key IDs.
		{
			category: MatchAPIKey,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		},

		// Password assignments (password: hunter2secret).
		{
			category: MatchPassword,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|pass)\s*[:=]\s*(\S{8,})`),
		},

		// US Social Security Numbers.
		{
			category: MatchSSN,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		},

		// Credit card numbers: 13-19 digits in groups of four. Luhn
		// validation is intentionally omitted.
		{
			category: MatchCreditCard,
			risk:     RiskCritical,
			regex:    regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{1,7}\b`),
		},

		// Phone numbers, US and international formats.
		{
			category: MatchPhone,
			risk:     RiskMedium,
			regex:    regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
		},

		// Private-range IPv4 addresses (10.x, 172.16-31.x, 192.168.x).
		{
			category: MatchIPAddress,
			risk:     RiskMedium,
			regex:    regexp.MustCompile(`\b(?:10\.\d{1,3}\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3})\b`),
		},

		// Email addresses.
		{
			category: MatchEmail,
			risk:     RiskLow,
			regex:    regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},

		// URLs.
		{
			category: MatchURL,
			risk:     RiskLow,
			regex:    regexp.MustCompile(`\bhttps?://[^\s<>"]+`),
		},

		// File paths: Unix absolute or Windows drive-letter paths. The
		// leading boundary keeps paths embedded in URLs from matching
		// twice; surrounding whitespace is trimmed during scan.
		{
			category: MatchFilePath,
			risk:     RiskLow,
			regex:    regexp.MustCompile(`(?:^|\s)(?:/(?:[\w.-]+/)+[\w.-]+|[A-Za-z]:\\(?:[\w.-]+\\)*[\w.-]+)`),
		},
	}
}

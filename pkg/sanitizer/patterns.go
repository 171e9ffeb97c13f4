package sanitizer

import "regexp"

// InjectionPattern is a single detection rule in the pattern layer: a
// warning category, a fixed severity, a matcher, and a description used
// verbatim in the emitted warning.
type InjectionPattern struct {
	Type        WarningType
	Severity    Severity
	Expr        string
	Description string

	regex *regexp.Regexp
}

// builtinInjectionPatterns returns the ordered built-in injection rules.
func builtinInjectionPatterns() []InjectionPattern {
	return compilePatterns([]InjectionPattern{
		{
			Type:        WarningRoleSpoofing,
			Severity:    SeverityHigh,
			Expr:        `(?im)^\s*(?:system|assistant|tool)\s*:`,
			Description: "Input impersonates a chat role to smuggle instructions",
		},
		{
			Type:        WarningRoleSpoofing,
			Severity:    SeverityHigh,
			Expr:        `(?i)\byou\s+are\s+now\s+(?:a\s+|an\s+|in\s+)?(?:developer\s+mode|dan\b|jailbroken|unrestricted)`,
			Description: "Input attempts to reassign the assistant's role",
		},
		{
			Type:        WarningInstructionOverride,
			Severity:    SeverityHigh,
			Expr:        `(?i)\b(?:ignore|disregard|forget|override)\s+(?:all\s+|any\s+|your\s+|the\s+)?(?:previous|prior|above|earlier|system)\s+(?:instructions?|prompts?|rules|directions|messages)`,
			Description: "Input contains instruction override language",
		},
		{
			Type:        WarningSystemPromptLeak,
			Severity:    SeverityMedium,
			Expr:        `(?i)\b(?:reveal|show|print|repeat|output|display)\b[^.\n]{0,40}\b(?:system\s+prompt|initial\s+instructions?|your\s+instructions?|hidden\s+prompt)`,
			Description: "Input asks the model to disclose its system prompt",
		},
		{
			Type:        WarningDataExfiltration,
			Severity:    SeverityCritical,
			Expr:        `(?i)\b(?:send|post|upload|forward|exfiltrate|transmit)\b[^.\n]{0,60}\b(?:to\s+https?://|webhook|attacker|remote\s+server|external\s+endpoint)`,
			Description: "Input instructs the model to transmit data to an external endpoint",
		},
		{
			Type:        WarningDelimiterInjection,
			Severity:    SeverityMedium,
			Expr:        "(?i)(?:<\\|im_start\\|>|<\\|im_end\\|>|\\[INST\\]|\\[/INST\\]|<<SYS>>|</s>|```\\s*system)",
			Description: "Input contains chat template or delimiter breakout markers",
		},
		{
			Type:        WarningEncodingAttack,
			Severity:    SeverityMedium,
			Expr:        `[A-Za-z0-9+/]{120,}={0,2}`,
			Description: "Input contains a long base64-like payload",
		},
		{
			Type:        WarningEncodingAttack,
			Severity:    SeverityMedium,
			Expr:        `(?:\\x[0-9a-fA-F]{2}){8,}`,
			Description: "Input contains a run of hex escape sequences",
		},
	})
}

// compilePatterns compiles each rule's matcher. Built-in expressions are
// expected to be valid; a failure here is a programming error.
func compilePatterns(patterns []InjectionPattern) []InjectionPattern {
	for i := range patterns {
		patterns[i].regex = regexp.MustCompile(patterns[i].Expr)
	}
	return patterns
}

package sanitizer

// Severity classifies how strongly a warning contributes to the risk score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// weight returns the risk score contribution of a severity.
func (s Severity) weight() int {
	switch s {
	case SeverityLow:
		return 5
	case SeverityMedium:
		return 15
	case SeverityHigh:
		return 30
	case SeverityCritical:
		return 50
	default:
		return 0
	}
}

// WarningType is the injection or abuse category of a sanitization warning.
type WarningType string

const (
	WarningRoleSpoofing        WarningType = "role_spoofing"
	WarningDelimiterInjection  WarningType = "delimiter_injection"
	WarningInstructionOverride WarningType = "instruction_override"
	WarningSystemPromptLeak    WarningType = "system_prompt_leak"
	WarningDataExfiltration    WarningType = "data_exfiltration"
	WarningEncodingAttack      WarningType = "encoding_attack"
	WarningExcessiveLength     WarningType = "excessive_length"
	WarningUnicodeAbuse        WarningType = "unicode_abuse"
)

// SanitizationWarning describes one finding from the sanitization pipeline.
type SanitizationWarning struct {
	// Type is the warning category.
	Type WarningType `json:"type"`

	// Severity determines the warning's risk score contribution.
	Severity Severity `json:"severity"`

	// Description is a human-readable explanation of the finding.
	Description string `json:"description"`

	// Offset is the rune index of the first match for pattern warnings.
	// Layer warnings (length, unicode) have no position and carry -1.
	Offset int `json:"offset"`

	// Count carries the number of affected characters for unicode_abuse
	// warnings. Zero for other warning types.
	Count int `json:"count,omitempty"`
}

// SanitizationResult is the outcome of running the full pipeline over one
// input.
type SanitizationResult struct {
	// Safe is true when the risk score is below the unsafe threshold.
	Safe bool `json:"safe"`

	// Sanitized is the input with invisible Unicode stripped and length
	// limits applied. The original input is not retained.
	Sanitized string `json:"sanitized"`

	// Warnings lists all findings in layer order.
	Warnings []SanitizationWarning `json:"warnings"`

	// RiskScore is the sum of warning severity weights, capped at 100.
	RiskScore int `json:"risk_score"`
}

// unsafeThreshold is the risk score at which an input is considered unsafe.
const unsafeThreshold = 50

// maxRiskScore caps the accumulated risk score.
const maxRiskScore = 100

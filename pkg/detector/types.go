package detector

// RiskLevel is an ordered severity classification used both for individual
// matches and for aggregate scan results.
type RiskLevel string

const (
	// RiskLow indicates data that is mildly identifying (emails, file paths).
	RiskLow RiskLevel = "low"
	// RiskMedium indicates data worth a user warning (phone numbers,
	// private IP addresses).
	RiskMedium RiskLevel = "medium"
	// RiskHigh indicates data that should rarely leave the device.
	RiskHigh RiskLevel = "high"
	// RiskCritical indicates secrets and regulated identifiers (API keys,
	// SSNs, credit cards, passwords). Critical matches force a block
	// recommendation.
	RiskCritical RiskLevel = "critical"
)

// rank returns the ordering position of a risk level (low < medium < high <
// critical). Unknown levels rank below low.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether r is at or above the given level.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank() >= other.rank()
}

// MatchType is the detection category of a sensitive pattern match.
type MatchType string

const (
	MatchAPIKey     MatchType = "api-key"
	MatchEmail      MatchType = "email"
	MatchPhone      MatchType = "phone"
	MatchSSN        MatchType = "ssn"
	MatchCreditCard MatchType = "credit-card"
	MatchPassword   MatchType = "password"
	MatchIPAddress  MatchType = "ip-address"
	MatchFilePath   MatchType = "file-path"
	MatchURL        MatchType = "url"
	MatchCustom     MatchType = "custom"
)

// Recommendation is the detector's aggregate advice for the scanned text.
type Recommendation string

const (
	// RecommendAllow means no sensitive data, or only low-risk matches.
	RecommendAllow Recommendation = "allow"
	// RecommendWarn means the caller should surface a warning and ask for
	// consent before uploading.
	RecommendWarn Recommendation = "warn"
	// RecommendBlock means at least one critical match was found and the
	// upload should not proceed.
	RecommendBlock Recommendation = "block"
)

// SensitivePatternMatch is a single detection. Value is the redacted display
// form; FullValue holds the original matched substring only transiently and
// is never serialized or logged.
type SensitivePatternMatch struct {
	// Type is the detection category.
	Type MatchType `json:"type"`

	// RiskLevel is the severity of this match.
	RiskLevel RiskLevel `json:"risk_level"`

	// Value is the redacted representation, safe to display and log.
	Value string `json:"value"`

	// FullValue is the original matched substring. Excluded from
	// serialization; callers must not persist it.
	FullValue string `json:"-"`

	// Offset is the rune index of the match within the scanned text.
	Offset int `json:"offset"`
}

// ScanResult is the aggregate outcome of scanning one text.
type ScanResult struct {
	// HasSensitiveData indicates whether any pattern matched.
	HasSensitiveData bool `json:"has_sensitive_data"`

	// Matches lists all matches in pattern-evaluation order.
	Matches []SensitivePatternMatch `json:"matches"`

	// OverallRiskLevel is the highest risk level among matches, floored at
	// medium when three or more matches are present. Empty when there are
	// no matches.
	OverallRiskLevel RiskLevel `json:"overall_risk_level,omitempty"`

	// Recommendation is the aggregate advice: block if any critical match,
	// warn for medium or high overall risk, allow otherwise.
	Recommendation Recommendation `json:"recommendation"`
}

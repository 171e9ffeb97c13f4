package detector

import (
	"fmt"
	"regexp"
	"sync"

	"cleargate-hq/cleargate/pkg/config"
)

// Detector scans text for sensitive data using an ordered rule table.
// Built-in rules run first, then caller-registered custom rules in
// registration order.
//
// Detector is safe for concurrent use: Scan takes a read lock, pattern
// registration takes a write lock.
type Detector struct {
	builtin []pattern

	// custom holds caller-registered rules keyed by handle, with handles
	// kept in registration order for deterministic evaluation.
	custom      map[int]pattern
	customOrder []int
	nextHandle  int

	mu sync.RWMutex
}

// PatternError reports a custom pattern that failed to compile at
// registration time.
type PatternError struct {
	Expr  string
	Cause error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid custom pattern %q: %v", e.Expr, e.Cause)
}

// Unwrap returns the underlying compile error.
func (e *PatternError) Unwrap() error {
	return e.Cause
}

// NewDetector creates a detector with the built-in rule table. Severity
// overrides from the configuration are applied by category name; cfg may be
// nil to use the built-in levels unchanged.
func NewDetector(cfg *config.DetectorConfig) *Detector {
	d := &Detector{
		builtin:    builtinPatterns(),
		custom:     make(map[int]pattern),
		nextHandle: 1,
	}

	if cfg != nil {
		for i := range d.builtin {
			if level, ok := cfg.Severities[string(d.builtin[i].category)]; ok {
				d.builtin[i].risk = RiskLevel(level)
			}
		}
	}

	return d
}

// Scan evaluates every active pattern against the text and aggregates the
// matches into a ScanResult. It is a pure function of the text and the
// active pattern set: no side effects, no I/O, and it never fails. An empty
// input returns a result with HasSensitiveData false.
func (d *Detector) Scan(text string) ScanResult {
	result := ScanResult{
		Matches:        []SensitivePatternMatch{},
		Recommendation: RecommendAllow,
	}

	if text == "" {
		return result
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.builtin {
		result.Matches = append(result.Matches, matchPattern(p, text)...)
	}
	for _, handle := range d.customOrder {
		result.Matches = append(result.Matches, matchPattern(d.custom[handle], text)...)
	}

	if len(result.Matches) == 0 {
		return result
	}

	result.HasSensitiveData = true
	result.OverallRiskLevel = aggregateRisk(result.Matches)
	result.Recommendation = recommend(result.Matches, result.OverallRiskLevel)

	return result
}

// AddCustomPattern registers a caller-supplied detection rule and returns a
// handle for later removal. A compile failure is reported here, never
// during Scan.
func (d *Detector) AddCustomPattern(category MatchType, expr string, risk RiskLevel) (int, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return 0, &PatternError{Expr: expr, Cause: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	handle := d.nextHandle
	d.nextHandle++
	d.custom[handle] = pattern{category: category, risk: risk, regex: re}
	d.customOrder = append(d.customOrder, handle)

	return handle, nil
}

// RemoveCustomPattern unregisters a rule by its handle. It returns false if
// the handle is unknown or already removed.
func (d *Detector) RemoveCustomPattern(handle int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.custom[handle]; !ok {
		return false
	}

	delete(d.custom, handle)
	for i, h := range d.customOrder {
		if h == handle {
			d.customOrder = append(d.customOrder[:i], d.customOrder[i+1:]...)
			break
		}
	}

	return true
}

// matchPattern finds all occurrences of one pattern in the text and builds
// redacted matches for them.
func matchPattern(p pattern, text string) []SensitivePatternMatch {
	locs := p.regex.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]SensitivePatternMatch, 0, len(locs))
	for _, loc := range locs {
		raw := text[loc[0]:loc[1]]
		value, lead := truncateWindow(raw)
		if value == "" {
			continue
		}

		matches = append(matches, SensitivePatternMatch{
			Type:      p.category,
			RiskLevel: p.risk,
			Value:     redact(value),
			FullValue: value,
			Offset:    len([]rune(text[:loc[0]])) + lead,
		})
	}

	return matches
}

// aggregateRisk computes the overall risk level: the maximum level among
// matches, floored at medium when three or more matches are present.
func aggregateRisk(matches []SensitivePatternMatch) RiskLevel {
	overall := RiskLow
	for _, m := range matches {
		if m.RiskLevel.rank() > overall.rank() {
			overall = m.RiskLevel
		}
	}

	if len(matches) >= 3 && !overall.AtLeast(RiskMedium) {
		overall = RiskMedium
	}

	return overall
}

// recommend derives the recommendation: block if any match is critical,
// warn for medium or high overall risk, allow otherwise.
func recommend(matches []SensitivePatternMatch, overall RiskLevel) Recommendation {
	for _, m := range matches {
		if m.RiskLevel == RiskCritical {
			return RecommendBlock
		}
	}

	if overall == RiskMedium || overall == RiskHigh {
		return RecommendWarn
	}

	return RecommendAllow
}

package sanitizer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"cleargate-hq/cleargate/pkg/config"
)

// Sanitizer applies the layered defense pipeline to raw user input before
// it is assembled into a prompt. It is deterministic, performs no I/O, and
// never fails.
//
// Sanitizer is safe for concurrent use: Sanitize takes a read lock, pattern
// registration takes a write lock.
type Sanitizer struct {
	maxLength int
	maxLines  int

	builtin []InjectionPattern

	custom      map[int]InjectionPattern
	customOrder []int
	nextHandle  int

	mu sync.RWMutex
}

// NewSanitizer creates a sanitizer with the built-in injection rules and
// the configured length limits. cfg may be nil to use the defaults.
func NewSanitizer(cfg *config.SanitizerConfig) *Sanitizer {
	maxLength := config.DefaultSanitizerMaxLength
	maxLines := config.DefaultSanitizerMaxLines
	if cfg != nil {
		if cfg.MaxLength > 0 {
			maxLength = cfg.MaxLength
		}
		if cfg.MaxLines > 0 {
			maxLines = cfg.MaxLines
		}
	}

	return &Sanitizer{
		maxLength:  maxLength,
		maxLines:   maxLines,
		builtin:    builtinInjectionPatterns(),
		custom:     make(map[int]InjectionPattern),
		nextHandle: 1,
	}
}

// Sanitize runs the pipeline over the input: length limits, invisible
// Unicode stripping, then injection pattern detection against the
// normalized text. All layers always run; the sanitized text is returned
// even when the input is unsafe.
func (s *Sanitizer) Sanitize(input string) SanitizationResult {
	var warnings []SanitizationWarning

	// Layer 1: length and complexity limits.
	working := input
	if runes := []rune(working); len(runes) > s.maxLength {
		warnings = append(warnings, SanitizationWarning{
			Type:        WarningExcessiveLength,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Input exceeds %d characters and was truncated", s.maxLength),
			Offset:      -1,
		})
		working = string(runes[:s.maxLength])
	}
	if lines := strings.Count(working, "\n") + 1; lines > s.maxLines {
		warnings = append(warnings, SanitizationWarning{
			Type:        WarningExcessiveLength,
			Severity:    SeverityLow,
			Description: fmt.Sprintf("Input has %d lines, more than the expected maximum of %d", lines, s.maxLines),
			Offset:      -1,
		})
	}

	// Layer 2: invisible Unicode normalization.
	working, removed := stripInvisible(working)
	if removed > 0 {
		warnings = append(warnings, SanitizationWarning{
			Type:        WarningUnicodeAbuse,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Removed %d invisible or direction-control characters", removed),
			Offset:      -1,
			Count:       removed,
		})
	}

	// Layer 3: injection pattern detection on the normalized text.
	s.mu.RLock()
	for _, p := range s.builtin {
		if w, ok := matchInjection(p, working); ok {
			warnings = append(warnings, w)
		}
	}
	for _, handle := range s.customOrder {
		if w, ok := matchInjection(s.custom[handle], working); ok {
			warnings = append(warnings, w)
		}
	}
	s.mu.RUnlock()

	score := 0
	for _, w := range warnings {
		score += w.Severity.weight()
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}

	if warnings == nil {
		warnings = []SanitizationWarning{}
	}

	return SanitizationResult{
		Safe:      score < unsafeThreshold,
		Sanitized: working,
		Warnings:  warnings,
		RiskScore: score,
	}
}

// matchInjection evaluates one rule and builds a warning for its first
// match, carrying the rune offset of the match.
func matchInjection(p InjectionPattern, text string) (SanitizationWarning, bool) {
	loc := p.regex.FindStringIndex(text)
	if loc == nil {
		return SanitizationWarning{}, false
	}

	return SanitizationWarning{
		Type:        p.Type,
		Severity:    p.Severity,
		Description: p.Description,
		Offset:      len([]rune(text[:loc[0]])),
	}, true
}

// AddPattern registers a caller-supplied injection rule and returns a
// handle for later removal. A compile failure is reported here, never
// during Sanitize.
func (s *Sanitizer) AddPattern(p InjectionPattern) (int, error) {
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return 0, fmt.Errorf("invalid injection pattern %q: %w", p.Expr, err)
	}
	p.regex = re

	s.mu.Lock()
	defer s.mu.Unlock()

	handle := s.nextHandle
	s.nextHandle++
	s.custom[handle] = p
	s.customOrder = append(s.customOrder, handle)

	return handle, nil
}

// RemovePattern unregisters a custom rule by its handle. It returns false
// if the handle is unknown.
func (s *Sanitizer) RemovePattern(handle int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[handle]; !ok {
		return false
	}

	delete(s.custom, handle)
	for i, h := range s.customOrder {
		if h == handle {
			s.customOrder = append(s.customOrder[:i], s.customOrder[i+1:]...)
			break
		}
	}

	return true
}

// Patterns returns the active rules, built-in first, then custom rules in
// registration order. The returned slice is a copy.
func (s *Sanitizer) Patterns() []InjectionPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := make([]InjectionPattern, 0, len(s.builtin)+len(s.customOrder))
	patterns = append(patterns, s.builtin...)
	for _, handle := range s.customOrder {
		patterns = append(patterns, s.custom[handle])
	}

	return patterns
}

// roleMarker matches chat-role markers in retrieved documents.
var roleMarker = regexp.MustCompile(`(?i)\b(system|assistant|user)\s*:`)

// templateMarkers neutralizes known chat-template and delimiter-breakout
// sequences by rewriting them into inert forms.
var templateMarkers = strings.NewReplacer(
	"<|im_start|>", "(im_start)",
	"<|im_end|>", "(im_end)",
	"[INST]", "(INST)",
	"[/INST]", "(/INST)",
	"<<SYS>>", "(SYS)",
	"<</SYS>>", "(/SYS)",
	"</s>", "(/s)",
	"```", "'''",
)

// SanitizeRAGContext neutralizes untrusted retrieved text before it is
// injected into a prompt. Unlike Sanitize it reports nothing: role markers
// are rewritten to bracketed tags, template and delimiter sequences are
// defanged, and invisible Unicode is stripped.
func (s *Sanitizer) SanitizeRAGContext(context string) string {
	cleaned, _ := stripInvisible(context)

	cleaned = roleMarker.ReplaceAllStringFunc(cleaned, func(m string) string {
		sub := roleMarker.FindStringSubmatch(m)
		return "[external-" + strings.ToLower(sub[1]) + "]"
	})

	return templateMarkers.Replace(cleaned)
}

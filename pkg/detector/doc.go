// Package detector performs sensitive data detection on outbound text.
//
// The detector evaluates an ordered list of built-in regular expression
// patterns (API keys, SSNs, credit cards, passwords, phone numbers, private
// IP addresses, emails, file paths, URLs) plus caller-registered custom
// patterns against the full text, and aggregates the matches into an overall
// risk level and a recommendation (allow, warn, block).
//
// Matched values are redacted at construction time: only a short prefix and
// suffix survive, the interior is masked. The unredacted value never crosses
// the detector boundary except transiently inside the match struct, which is
// excluded from serialization.
//
// Scan is a pure function of the input text and the active pattern set. It
// performs no I/O and never fails; an empty input yields an empty result.
package detector

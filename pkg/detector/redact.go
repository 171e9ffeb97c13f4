package detector

import "strings"

// redact converts a matched sensitive value into a partially masked display
// form. Enough prefix and suffix survive to make the match recognizable, but
// the interior is masked so the secret cannot be reconstructed.
//
// The result is always shorter than the input for inputs of eight characters
// or more, so the redacted form can never contain the original value.
// Boundaries are counted in runes so multibyte values stay valid UTF-8.
func redact(value string) string {
	runes := []rune(value)
	switch {
	case len(runes) < 8:
		return "***"
	case len(runes) < 16:
		return string(runes[:2]) + "***" + string(runes[len(runes)-2:])
	default:
		return string(runes[:4]) + "***" + string(runes[len(runes)-4:])
	}
}

// truncateWindow trims leading and trailing whitespace from a raw regex
// match and returns the trimmed value together with how many leading runes
// were removed. Some path patterns anchor on whitespace, which would
// otherwise leak into the reported value and offset.
func truncateWindow(raw string) (string, int) {
	trimmed := strings.TrimSpace(raw)
	lead := len([]rune(raw)) - len([]rune(strings.TrimLeft(raw, " \t\r\n")))
	return trimmed, lead
}

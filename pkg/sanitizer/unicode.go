package sanitizer

import "strings"

// isInvisible reports whether a rune belongs to the invisible or
// direction-control set that has no place in chat input: zero-width
// characters, bidi controls, joiners, the soft hyphen, byte order marks,
// interlinear annotation controls, and Unicode tag characters. Tab, newline,
// and carriage return are not in the set.
func isInvisible(r rune) bool {
	switch r {
	case '\u00AD', // soft hyphen
		'\u034F', // combining grapheme joiner
		'\u180E', // Mongolian vowel separator
		'\uFEFF': // zero-width no-break space / BOM
		return true
	}

	switch {
	case r >= '\u200B' && r <= '\u200F': // zero-width space..right-to-left mark
		return true
	case r >= '\u202A' && r <= '\u202E': // bidi embedding and override controls
		return true
	case r >= '\u2060' && r <= '\u2064': // word joiner, invisible operators
		return true
	case r >= '\u2066' && r <= '\u2069': // bidi isolate controls
		return true
	case r >= '\uFFF9' && r <= '\uFFFB': // interlinear annotation controls
		return true
	case r >= 0xE0000 && r <= 0xE007F: // tag characters
		return true
	}

	return false
}

// stripInvisible removes every invisible rune from the text and returns the
// cleaned text together with the number of runes removed.
func stripInvisible(text string) (string, int) {
	removed := 0
	var b strings.Builder

	for _, r := range text {
		if isInvisible(r) {
			removed++
			continue
		}
		b.WriteRune(r)
	}

	if removed == 0 {
		return text, 0
	}
	return b.String(), removed
}

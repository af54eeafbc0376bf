package util

// TruncateString cuts s to at most maxRunes runes, appending "..." when
// anything was dropped. Multi-byte characters are never split.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

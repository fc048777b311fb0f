package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen caps resource descriptions in table output so a
// row stays on one terminal line.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest usable maxLen. Anything below it leaves no
// room for content plus the "..." marker.
const MinTruncateLen = 4

// TruncateDescription flattens s to a single line and truncates it to maxLen
// runes, appending "..." when content was cut. Runs of whitespace, newlines
// included, collapse to single spaces so multi-line descriptions fit table
// cells. Slicing is rune-based, so multi-byte characters never get split.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

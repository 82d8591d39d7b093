// Package title derives and sanitizes a display title from an item's file
// name, per the remote platform's rules.
package title

import (
	"fmt"
	"strings"
)

// MaxLength is the platform's title limit in characters.
const MaxLength = 100

// Fallback replaces a title that is empty after sanitization.
const Fallback = "Untitled Video"

// The platform rejects angle brackets in titles.
var disallowed = []string{"<", ">"}

// FromFilename strips the extension and sanitizes the remainder.
func FromFilename(name string) (string, []string) {
	base := name
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return Sanitize(base)
}

// Sanitize removes disallowed characters and truncates to MaxLength.
// Corrections are non-fatal; each one is reported as a warning so the
// operator sees what changed.
func Sanitize(raw string) (string, []string) {
	var warnings []string
	sanitized := raw

	for _, ch := range disallowed {
		if strings.Contains(sanitized, ch) {
			sanitized = strings.ReplaceAll(sanitized, ch, "")
			warnings = append(warnings, fmt.Sprintf("removed disallowed character %q", ch))
		}
	}

	if runes := []rune(sanitized); len(runes) > MaxLength {
		warnings = append(warnings, fmt.Sprintf("title is %d characters (max %d); truncated", len(runes), MaxLength))
		sanitized = string(runes[:MaxLength])
	} else if len(runes) == 0 {
		warnings = append(warnings, "title is empty after sanitization; using default")
		sanitized = Fallback
	}

	return sanitized, warnings
}

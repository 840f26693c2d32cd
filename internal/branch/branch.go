// Package branch derives git branch names from task titles.
package branch

import (
	"strings"
	"unicode"
)

const DefaultFlow = "feature"

// Name builds "{flow}/{slug}" from a task title. The caller is expected to
// translate non-English titles first; whatever survives ASCII filtering ends
// up in the slug. An empty flow falls back to DefaultFlow.
func Name(flow, title string) string {
	if flow == "" {
		flow = DefaultFlow
	}
	return Slugify(flow) + "/" + Slugify(title)
}

// Slugify lowercases s and reduces it to ASCII letters, digits and single
// hyphens. Runs of anything else collapse into one hyphen; the result carries
// no leading or trailing hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', unicode.IsDigit(r) && r < 128:
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// HasNonASCII reports whether the title needs translating before it can
// produce a useful slug.
func HasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

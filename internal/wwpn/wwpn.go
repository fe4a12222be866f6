// Package wwpn recognizes and canonicalizes Fibre Channel World-Wide Port Names.
package wwpn

import (
	"regexp"
	"strings"
)

var (
	// hexRun splits text into maximal runs of hex digits and colons; a WWPN
	// must be a whole run so a ninth octet or a longer hex string never
	// yields a truncated match.
	hexRun = regexp.MustCompile(`[0-9A-Fa-f:]+`)
	exact  = regexp.MustCompile(`^[0-9a-f]{2}(?::[0-9a-f]{2}){7}$`)
)

// Find returns the first well-formed WWPN in s, canonicalized.
func Find(s string) (string, bool) {
	for _, run := range hexRun.FindAllString(s, -1) {
		if w, ok := Canonical(run); ok {
			return w, true
		}
	}
	return "", false
}

// Canonical returns the lowercase form of s if s is exactly one WWPN.
// Separator colons around the value (as in "label :xx:...") are ignored.
func Canonical(s string) (string, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), ":"))
	if !exact.MatchString(s) {
		return "", false
	}
	return s, true
}

// Valid reports whether s is exactly one WWPN.
func Valid(s string) bool {
	_, ok := Canonical(s)
	return ok
}

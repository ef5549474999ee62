// Package phone canonicalizes raw caller phone strings into E.164-ish cache
// keys. Normalize is the single source of truth for cache key derivation:
// every read and write path must go through it, or entries become orphaned.
package phone

import "strings"

// Normalize converts a raw phone string into its canonical form. It is pure,
// total and idempotent: it never fails, and Normalize(Normalize(x)) ==
// Normalize(x) for all inputs.
//
// Rules, in order:
//   - strip every character except digits and a leading "+"
//   - already starts with "+": return as-is
//   - exactly 10 digits: assume North American, prepend "+1"
//   - leading "1" and exactly 11 digits: prepend "+"
//   - leading "00" international prefix: replace with "+"
//   - otherwise: prepend "+"
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 2)
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	n := b.String()

	switch {
	case strings.HasPrefix(n, "+"):
		return n
	case len(n) == 10:
		return "+1" + n
	case len(n) == 11 && strings.HasPrefix(n, "1"):
		return "+" + n
	case strings.HasPrefix(n, "00"):
		return "+" + n[2:]
	default:
		return "+" + n
	}
}

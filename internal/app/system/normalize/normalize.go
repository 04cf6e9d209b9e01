// Package normalize holds small input-normalization helpers used by
// stores and handlers before anything touches the database.
package normalize

import "strings"

// Phone normalizes a phone number for storage and lookup: strips spaces,
// dashes, dots, and parentheses, and keeps a single leading "+".
// "00" international prefixes are rewritten to "+". It does not validate
// country codes; a value that normalizes to "" or "+" is unusable and
// callers should reject it.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separators, dropped
		default:
			// anything else invalidates the number
			return ""
		}
	}
	out := b.String()
	if strings.HasPrefix(out, "00") {
		out = "+" + out[2:]
	}
	if out == "" || out == "+" {
		return ""
	}
	return out
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to single spaces. Case is preserved; the case-insensitive
// variant is derived separately via text folding.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

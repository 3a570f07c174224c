package claim

import "strings"

// Normalize canonicalizes a raw name for comparison: lowercase, ё folded
// to е, split on whitespace, at most the first two tokens kept (a third
// token is a patronymic and is dropped). Empty input yields an empty set.
// Normalizing an already-normalized name is a no-op.
func Normalize(raw string) []string {
	parts := strings.Fields(raw)
	out := make([]string, 0, 2)
	for _, p := range parts {
		p = strings.ReplaceAll(strings.ToLower(p), "ё", "е")
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// TokensContain reports whether one token set is contained in the other,
// in either direction. Word order is irrelevant; this tolerates missing
// or extra middle names on both sides.
func TokensContain(a, b []string) bool {
	return subset(a, b) || subset(b, a)
}

func subset(a, b []string) bool {
	for _, t := range a {
		found := false
		for _, u := range b {
			if t == u {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

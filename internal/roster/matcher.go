package roster

import (
	"context"
	"log"

	"alumni-check/internal/claim"
)

// Matcher is the acceptance oracle: every approve/decline decision in the
// bot reduces to Match.
type Matcher struct {
	repo Repository
}

func NewMatcher(repo Repository) *Matcher {
	return &Matcher{repo: repo}
}

// Match checks a claim against the roster. The (year, klass) pair is
// compared exactly; names are compared as normalized token sets with
// containment in either direction, so word order and middle names do not
// matter. Invalid claims are rejected without touching the store. A store
// error is returned to the caller — it must never be read as a match.
func (m *Matcher) Match(ctx context.Context, c claim.Claim) (Record, bool, error) {
	if c.FullName == "" || c.Year == 0 || c.Klass == 0 {
		log.Printf("❌ match rejected: missing claim fields %+v", c)
		return Record{}, false, nil
	}
	tokens := claim.Normalize(c.FullName)
	if len(tokens) == 0 {
		log.Printf("❌ match rejected: name %q normalizes to nothing", c.FullName)
		return Record{}, false, nil
	}

	candidates, err := m.repo.FindCandidates(ctx, c.Year, c.Klass)
	if err != nil {
		return Record{}, false, err
	}
	log.Printf("📈 found %d roster records for year %d, class %d", len(candidates), c.Year, c.Klass)

	for _, rec := range candidates {
		recTokens := claim.Normalize(rec.FullName)
		if len(recTokens) == 0 {
			continue
		}
		if claim.TokensContain(tokens, recTokens) {
			log.Printf("✅ match: %q is %q (%d-%d)", c.FullName, rec.FullName, rec.Year, rec.Klass)
			return rec, true, nil
		}
	}
	log.Printf("❌ no match for %q, year %d, class %d", c.FullName, c.Year, c.Klass)
	return Record{}, false, nil
}

// Package duplicates finds sibling funds that share a name or alias with a
// candidate fund.
package duplicates

import (
	"canoe-backend/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Match pairs a sibling fund with the lower-cased name it shares with the candidate.
type Match struct {
	Fund        domain.Fund
	MatchedName string
}

// NameSet returns the lower-cased name followed by the lower-cased aliases,
// deduplicated, in that order.
func NameSet(name string, aliases []string) []string {
	// cases.Caser keeps state; one per call keeps NameSet safe for concurrent use
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(aliases)+1)
	out := make([]string, 0, len(aliases)+1)
	add := func(s string) {
		s = lower.String(s)
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	add(name)
	for _, a := range aliases {
		add(a)
	}
	return out
}

// Find returns, in sibling order, every sibling whose name set intersects the
// candidate's. Each sibling yields at most one match, carrying the first
// candidate name (name first, then aliases) found in its set. Siblings owned
// by another manager, and the candidate itself, are never compared.
func Find(candidate domain.Fund, siblings []domain.Fund) []Match {
	names := NameSet(candidate.Name, candidate.AliasNames())
	var matches []Match
	for _, sib := range siblings {
		if sib.FundManagerID != candidate.FundManagerID {
			continue
		}
		if candidate.ID != 0 && sib.ID == candidate.ID {
			continue
		}
		sibNames := NameSet(sib.Name, sib.AliasNames())
		set := make(map[string]struct{}, len(sibNames))
		for _, n := range sibNames {
			set[n] = struct{}{}
		}
		for _, n := range names {
			if _, ok := set[n]; ok {
				matches = append(matches, Match{Fund: sib, MatchedName: n})
				break
			}
		}
	}
	return matches
}

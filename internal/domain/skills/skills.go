// Package skills turns free-text skill lists into canonical token sets.
package skills

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// separator splits a skill list into tokens.
const separator = ","

// Set is a set of normalized skill tokens.
type Set map[string]struct{}

// Normalize splits text on commas, trims and lowercases each token and
// drops empty tokens. Duplicates collapse. Empty input yields an empty set.
func Normalize(text string) Set {
	out := make(Set)
	if strings.TrimSpace(text) == "" {
		return out
	}
	// cases.Caser keeps internal state, so one per call.
	lower := cases.Lower(language.Und)
	for _, part := range strings.Split(text, separator) {
		token := lower.String(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		out[token] = struct{}{}
	}
	return out
}

// FromList normalizes every entry of a list of skill records into one set.
// Each record may itself be a comma separated list.
func FromList(records []string) Set {
	out := make(Set)
	for _, r := range records {
		for token := range Normalize(r) {
			out[token] = struct{}{}
		}
	}
	return out
}

// Len returns the number of tokens.
func (s Set) Len() int { return len(s) }

// Has reports whether token is in the set. The token is matched as given.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Intersect returns the number of tokens present in both sets.
func (s Set) Intersect(other Set) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for token := range small {
		if _, ok := large[token]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the tokens in ascending order. Never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Union merges other into s and returns s.
func (s Set) Union(other Set) Set {
	for token := range other {
		s[token] = struct{}{}
	}
	return s
}

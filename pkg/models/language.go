package models

import (
	"sort"

	"github.com/goccy/go-json"
)

// LanguageSet is the set of lowercase language codes seen across a work's
// editions. An empty set means "unknown".
type LanguageSet map[string]struct{}

func NewLanguageSet(codes ...string) LanguageSet {
	s := make(LanguageSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s LanguageSet) Add(code string) {
	if code != "" {
		s[code] = struct{}{}
	}
}

func (s LanguageSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the codes in sorted order.
func (s LanguageSet) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Intersects reports whether any code of s is in other.
func (s LanguageSet) Intersects(other LanguageSet) bool {
	for c := range s {
		if other.Has(c) {
			return true
		}
	}
	return false
}

func (s LanguageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Codes())
}

func (s *LanguageSet) UnmarshalJSON(b []byte) error {
	var codes []string
	if err := json.Unmarshal(b, &codes); err != nil {
		return err
	}
	*s = NewLanguageSet(codes...)
	return nil
}

package recommend

import (
	"readdit/internal/sources"
	"readdit/internal/textengine"
	"readdit/pkg/models"
)

// DedupeByKey keeps the first candidate seen per key and drops keyless
// candidates. Order is preserved.
func DedupeByKey(in []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Candidate, 0, len(in))
	for _, c := range in {
		if c.Key == "" {
			continue
		}
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ExcludeBase drops the base work itself: same work id ("OL1W" and
// "/works/OL1W" match), or a title that normalizes to the base title.
// A base title that normalizes to "" excludes nothing by title.
func ExcludeBase(in []models.Candidate, baseKey, baseTitle string) []models.Candidate {
	baseID := sources.WorkID(baseKey)
	baseNorm := textengine.NormalizeTitle(baseTitle)
	out := make([]models.Candidate, 0, len(in))
	for _, c := range in {
		if c.Key == "" {
			continue
		}
		if baseID != "" && sources.WorkID(c.Key) == baseID {
			continue
		}
		if baseNorm != "" && textengine.NormalizeTitle(c.Title) == baseNorm {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PickDistinctTitles takes up to k candidates in order, skipping any whose
// normalized title was already taken. Titles that normalize to "" are
// never treated as duplicates of each other.
func PickDistinctTitles(in []models.ScoredCandidate, k int) []models.ScoredCandidate {
	seen := make(map[string]struct{}, k)
	out := make([]models.ScoredCandidate, 0, k)
	for _, c := range in {
		if len(out) >= k {
			break
		}
		if n := textengine.NormalizeTitle(c.Title); n != "" {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
		}
		out = append(out, c)
	}
	return out
}

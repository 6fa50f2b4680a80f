package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"readdit/pkg/models"
)

// Weights blend the three sub-scores into the final score.
type Weights struct {
	Catalog    float64
	Community  float64
	Preference float64
}

func DefaultWeights() Weights {
	return Weights{Catalog: 0.55, Community: 0.25, Preference: 0.20}
}

// GenreHints maps each genre token to the subjects that count as a hit.
var GenreHints = map[string][]string{
	"fantasy":    {"fantasy"},
	"scifi":      {"science_fiction", "science fiction", "sci-fi", "space", "dystopia"},
	"mystery":    {"mystery", "detective", "crime", "thriller"},
	"romance":    {"romance", "love"},
	"nonfiction": {"nonfiction", "history", "biography", "essays"},
	"classics":   {"classic", "classics", "literature"},
}

// minMentionTitle is the shortest candidate title matched against posts.
const minMentionTitle = 4

// CatalogScore is a mild length bonus in [1, 1.5].
func CatalogScore(title string) float64 {
	return 1 + math.Min(0.5, float64(utf8.RuneCountInString(title))/200)
}

// PreferenceScore is the share of selected genres whose hints appear
// among the subjects, in [0, 1].
func PreferenceScore(subjects, genres []string) float64 {
	if len(genres) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		have[s] = struct{}{}
	}
	hits := 0
	for _, g := range genres {
		for _, h := range GenreHints[g] {
			if _, ok := have[h]; ok {
				hits++
				break
			}
		}
	}
	return math.Min(1, float64(hits)/float64(len(genres)))
}

// CommunityScore is log10(best+1) of the best post mentioning the
// candidate title, or 0.
func CommunityScore(candTitle string, posts []models.CommunityPost) float64 {
	if len(posts) == 0 {
		return 0
	}
	cand := strings.ToLower(candTitle)
	if utf8.RuneCountInString(cand) < minMentionTitle {
		return 0
	}
	best := 0.0
	for _, p := range posts {
		if !strings.Contains(strings.ToLower(p.Title), cand) {
			continue
		}
		s := p.Score
		if s <= 0 {
			s = models.EngagementScore(p.Ups, p.NumComments)
		}
		best = math.Max(best, s)
	}
	if best <= 0 {
		return 0
	}
	return math.Log10(best + 1)
}

// Score computes the sub-scores of every candidate and returns them
// sorted by final score, highest first. Ties keep input order.
func Score(cands []models.Candidate, prefs models.Preferences, posts []models.CommunityPost, w Weights) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		sc := models.ScoredCandidate{
			Candidate: c,
			OL:        CatalogScore(c.Title),
			Pref:      PreferenceScore(c.Subjects, prefs.Genres),
			Reddit:    CommunityScore(c.Title, posts),
		}
		sc.FinalScore = w.Catalog*sc.OL + w.Community*sc.Reddit + w.Preference*sc.Pref
		out = append(out, sc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

package recommend

import (
	"context"

	"readdit/internal/metrics"
	"readdit/internal/textengine"
	"readdit/pkg/models"
)

// LanguageProber returns the edition languages of a work. An empty set
// means unknown.
type LanguageProber func(ctx context.Context, workKey string) models.LanguageSet

// AllowedLanguage reports whether a language set passes the filter.
// Unknown (empty) sets pass.
func AllowedLanguage(langs models.LanguageSet) bool {
	return len(langs) == 0 || langs.Intersects(textengine.AllowedLanguages)
}

// FilterByLanguage walks the ranked list in order, probing one candidate
// at a time, and collects those with acceptable edition languages. At
// most min(budget, len(ranked)) candidates are probed and probing stops
// once want candidates passed.
//
// When fewer than want pass, the filter result is discarded and the
// first want candidates of ranked are returned unfiltered, each with an
// empty language set.
func FilterByLanguage(ctx context.Context, ranked []models.ScoredCandidate, want, budget int, probe LanguageProber) []models.ScoredCandidate {
	limit := min(budget, len(ranked))
	picked := make([]models.ScoredCandidate, 0, want)

	for i := 0; i < limit && len(picked) < want; i++ {
		c := ranked[i]
		langs := probe(ctx, c.Key)
		metrics.LanguageProbes.Inc()
		if AllowedLanguage(langs) {
			c.Languages = langs
			picked = append(picked, c)
		}
	}

	if len(picked) >= want {
		return picked
	}

	metrics.LanguageFallbacks.Inc()
	n := min(want, len(ranked))
	out := make([]models.ScoredCandidate, n)
	for i := range out {
		out[i] = ranked[i]
		out[i].Languages = models.NewLanguageSet()
	}
	return out
}

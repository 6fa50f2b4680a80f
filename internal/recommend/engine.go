// Package recommend turns a base work into a short list of related works.
//
// Recommend gathers candidates from the catalog by author and by the base
// work's two leading subjects, drops duplicates and the base work itself,
// ranks what is left, narrows the ranking to works with English or German
// editions, and explains each pick in a sentence or two.
package recommend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"readdit/internal/cache"
	"readdit/internal/logging"
	"readdit/internal/metrics"
	"readdit/internal/sources"
	"readdit/internal/textengine"
	"readdit/pkg/models"
)

// Catalog is the subset of the catalog provider the engine uses.
type Catalog interface {
	AuthorWorks(ctx context.Context, authorKey string, limit int) sources.Result[[]models.Candidate]
	SubjectWorks(ctx context.Context, subject string, limit int) sources.Result[[]models.Candidate]
	EditionLanguages(ctx context.Context, workKey string, limit int) sources.Result[models.LanguageSet]
	WorkDetails(ctx context.Context, workKey string) sources.Result[models.WorkDetails]
}

// Community searches discussion posts.
type Community interface {
	SearchPosts(ctx context.Context, query string) sources.Result[[]models.CommunityPost]
}

// Config tunes the engine.
type Config struct {
	// WorksLimit is requested from each catalog lookup.
	WorksLimit int
	// FilterWant is how many candidates the language filter tries to keep.
	FilterWant int
	// MaxResults is how many recommendations are returned.
	MaxResults int
	// ProbeBudget caps language probes per request.
	ProbeBudget int
	// EditionsLimit is how many editions a language probe inspects.
	EditionsLimit int
	Weights       Weights
}

func DefaultConfig() Config {
	return Config{
		WorksLimit:    20,
		FilterWant:    6,
		MaxResults:    3,
		ProbeBudget:   15,
		EditionsLimit: 20,
		Weights:       DefaultWeights(),
	}
}

// Engine owns the caches and the providers. It is safe for concurrent use.
type Engine struct {
	catalog   Catalog
	community Community
	caches    *cache.Set
	cfg       Config
}

// NewEngine builds an engine. A nil caches gets a fresh cache.Set.
func NewEngine(catalog Catalog, community Community, caches *cache.Set, cfg Config) *Engine {
	if caches == nil {
		caches = cache.New()
	}
	def := DefaultConfig()
	if cfg.WorksLimit <= 0 {
		cfg.WorksLimit = def.WorksLimit
	}
	if cfg.FilterWant <= 0 {
		cfg.FilterWant = def.FilterWant
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.ProbeBudget <= 0 {
		cfg.ProbeBudget = def.ProbeBudget
	}
	if cfg.EditionsLimit <= 0 {
		cfg.EditionsLimit = def.EditionsLimit
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	return &Engine{catalog: catalog, community: community, caches: caches, cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Recommend produces at most MaxResults recommendations for base. It never
// fails: provider trouble shows up as the unavailable status, too few
// usable candidates as no_match.
func (e *Engine) Recommend(ctx context.Context, base models.WorkMeta, prefs models.Preferences) models.Recommendations {
	log := logging.With().Str("work", base.WorkKey).Str("title", base.Title).Logger()

	cands, ok := e.gather(ctx, base)
	if !ok {
		log.Warn().Msg("all candidate sources failed")
		return e.finish(models.RecommendationsUnavailable, nil)
	}

	cands = DedupeByKey(cands)
	cands = ExcludeBase(cands, base.WorkKey, base.Title)
	if len(cands) == 0 {
		return e.finish(models.RecommendationsNoMatch, nil)
	}

	posts, _ := e.CachedVoices(base.Title)
	ranked := Score(cands, prefs, posts, e.cfg.Weights)
	filtered := FilterByLanguage(ctx, ranked, e.cfg.FilterWant, e.cfg.ProbeBudget, e.EditionLanguages)
	picked := PickDistinctTitles(filtered, e.cfg.MaxResults)
	if len(picked) == 0 {
		return e.finish(models.RecommendationsNoMatch, nil)
	}

	items := make([]models.Recommendation, 0, len(picked))
	for _, c := range picked {
		items = append(items, e.recommendation(base, c))
	}
	log.Debug().Int("candidates", len(cands)).Int("picked", len(items)).Msg("recommendations ready")
	return e.finish(models.RecommendationsOK, items)
}

func (e *Engine) finish(status string, items []models.Recommendation) models.Recommendations {
	metrics.Recommendations.WithLabelValues(status).Inc()
	if items == nil {
		items = []models.Recommendation{}
	}
	return models.Recommendations{Status: status, Items: items}
}

// gather runs the author lookup and the two subject lookups together and
// concatenates their results in that order. It reports false when all
// three came back Empty.
func (e *Engine) gather(ctx context.Context, base models.WorkMeta) ([]models.Candidate, bool) {
	var subjects [2]string
	copy(subjects[:], base.Subjects)

	var results [3]sources.Result[[]models.Candidate]
	var g errgroup.Group
	g.Go(func() error {
		results[0] = e.catalog.AuthorWorks(ctx, base.AuthorKey, e.cfg.WorksLimit)
		return nil
	})
	for i, s := range subjects {
		i, s := i, s
		g.Go(func() error {
			results[i+1] = e.catalog.SubjectWorks(ctx, s, e.cfg.WorksLimit)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Candidate
	anyOK := false
	for _, r := range results {
		v, ok := r.Get()
		anyOK = anyOK || ok
		all = append(all, v...)
	}
	return all, anyOK
}

func (e *Engine) recommendation(base models.WorkMeta, c models.ScoredCandidate) models.Recommendation {
	author := c.AuthorName
	authorKey := c.AuthorKey
	if textengine.SafeAuthorName(author) == "" && (authorKey == "" || authorKey == sources.AuthorID(base.AuthorKey)) {
		if safe := textengine.SafeAuthorName(base.AuthorName); safe != "" {
			author = safe
		}
	}
	if authorKey == "" {
		authorKey = sources.AuthorID(base.AuthorKey)
	}

	candAuthor := textengine.SafeAuthorName(author)
	baseAuthor := textengine.SafeAuthorName(base.AuthorName)
	sig := textengine.Signals{
		SameAuthor:     sameAuthor(candAuthor, baseAuthor),
		SharedLabels:   textengine.SharedLabels(base.Subjects, c.Subjects),
		PrefsBoost:     c.Pref > 0.2,
		CommunityBoost: c.Reddit > 0,
	}

	return models.Recommendation{
		Title:            c.Title,
		AuthorName:       author,
		ReasonText:       textengine.RecommendationReason(base.Title, c.Title, author, sig),
		Key:              c.Key,
		AuthorKey:        authorKey,
		Subjects:         c.Subjects,
		CoverID:          c.CoverID,
		FirstPublishYear: c.FirstPublishYear,
		EditionCount:     c.EditionCount,
	}
}

// sameAuthor compares display names folded like titles. Names that fold
// to nothing never match.
func sameAuthor(a, b string) bool {
	na, nb := textengine.NormalizeTitle(a), textengine.NormalizeTitle(b)
	return na != "" && na == nb
}

// EditionLanguages returns the cached language set of a work, probing the
// catalog on a miss. A failed probe is cached as the empty set unless the
// caller gave up first.
func (e *Engine) EditionLanguages(ctx context.Context, workKey string) models.LanguageSet {
	if workKey == "" {
		return models.NewLanguageSet()
	}
	langs, _ := e.caches.Languages.GetOrLoad(workKey, func() (models.LanguageSet, bool) {
		langs, ok := e.catalog.EditionLanguages(ctx, workKey, e.cfg.EditionsLimit).Get()
		if !ok || langs == nil {
			return models.NewLanguageSet(), ctx.Err() == nil
		}
		return langs, true
	})
	return langs
}

// WorkDetails returns the cached work record, loading it on a miss.
// Failed loads are not cached.
func (e *Engine) WorkDetails(ctx context.Context, workKey string) (models.WorkDetails, bool) {
	if workKey == "" {
		return models.WorkDetails{}, false
	}
	return e.caches.Works.GetOrLoad(workKey, func() (models.WorkDetails, bool) {
		return e.catalog.WorkDetails(ctx, workKey).Get()
	})
}

// Voices returns the community posts about a title, searching on the
// first request for its normalized form. Failed searches are not cached.
func (e *Engine) Voices(ctx context.Context, title string) ([]models.CommunityPost, bool) {
	key := textengine.NormalizeTitle(title)
	if key == "" {
		return nil, false
	}
	return e.caches.Posts.GetOrLoad(key, func() ([]models.CommunityPost, bool) {
		return e.community.SearchPosts(ctx, title).Get()
	})
}

// CachedVoices returns the posts cached for a title without searching.
func (e *Engine) CachedVoices(title string) ([]models.CommunityPost, bool) {
	return e.caches.Posts.Get(textengine.NormalizeTitle(title))
}

// Overview is the descriptive summary of a work.
type Overview struct {
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary"`
	CoverID     int64    `json:"cover_id,omitempty"`
	Labels      []string `json:"labels"`
}

// Overview describes a work from its catalog record, falling back to
// generated text when the record has no description.
func (e *Engine) Overview(ctx context.Context, meta models.WorkMeta) Overview {
	ov := Overview{
		Summary: textengine.OverviewText(meta),
		CoverID: meta.CoverID,
		Labels:  textengine.CardLabels(meta.Subjects),
	}
	if d, ok := e.WorkDetails(ctx, meta.WorkKey); ok {
		ov.Description = d.Description
		if ov.CoverID == 0 {
			ov.CoverID = d.FirstCover()
		}
	}
	if ov.Labels == nil {
		ov.Labels = []string{}
	}
	return ov
}

// FunFacts builds the fact list for a work from the catalog record, the
// edition languages and any community posts already cached.
func (e *Engine) FunFacts(ctx context.Context, meta models.WorkMeta) []models.Fact {
	in := textengine.FactInput{Meta: meta}
	if meta.WorkKey != "" {
		if d, ok := e.WorkDetails(ctx, meta.WorkKey); ok {
			in.Details = &d
		}
		in.Languages = e.EditionLanguages(ctx, meta.WorkKey)
	}
	in.Posts, _ = e.CachedVoices(meta.Title)
	return textengine.FunFacts(in)
}

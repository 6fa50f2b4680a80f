package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"readdit/internal/logging"
	"readdit/pkg/models"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
)

// OpenLibraryConfig configures the catalog provider.
type OpenLibraryConfig struct {
	BaseURL string
	Client  ClientConfig
}

// OpenLibrary is the catalog provider. Every method fails soft: a
// transport or decode failure is logged and returned as Empty.
type OpenLibrary struct {
	base string
	c    *jsonClient
}

// NewOpenLibrary builds the provider. hc may be nil, in which case a
// client with the configured timeout is used.
func NewOpenLibrary(cfg OpenLibraryConfig, hc *http.Client) *OpenLibrary {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenLibraryURL
	}
	if cfg.Client.Name == "" {
		cfg.Client.Name = "openlibrary"
	}
	return &OpenLibrary{base: base, c: newJSONClient(cfg.Client, hc)}
}

func (o *OpenLibrary) Name() string { return o.c.name }

// AuthorWorks returns up to limit works credited to the author. The key
// may be given as "OL123A" or "/authors/OL123A".
func (o *OpenLibrary) AuthorWorks(ctx context.Context, authorKey string, limit int) Result[[]models.Candidate] {
	id := AuthorID(authorKey)
	if id == "" {
		return Empty[[]models.Candidate]()
	}
	u := fmt.Sprintf("%s/authors/%s/works.json?limit=%d", o.base, url.PathEscape(id), limit)

	var raw struct {
		Entries []AuthorWorkEntry `json:"entries"`
	}
	if !o.get(ctx, u, &raw) {
		return Empty[[]models.Candidate]()
	}

	entries := capped(raw.Entries, limit)
	out := make([]models.Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Candidate())
	}
	return Ok(out)
}

// SubjectWorks returns up to limit works tagged with subject.
func (o *OpenLibrary) SubjectWorks(ctx context.Context, subject string, limit int) Result[[]models.Candidate] {
	slug := SubjectSlug(subject)
	if slug == "" {
		return Empty[[]models.Candidate]()
	}
	u := fmt.Sprintf("%s/subjects/%s.json?limit=%d", o.base, url.PathEscape(slug), limit)

	var raw struct {
		Works []SubjectWork `json:"works"`
	}
	if !o.get(ctx, u, &raw) {
		return Empty[[]models.Candidate]()
	}

	works := capped(raw.Works, limit)
	out := make([]models.Candidate, 0, len(works))
	for _, w := range works {
		out = append(out, w.Candidate())
	}
	return Ok(out)
}

// EditionLanguages collects the language codes of up to limit editions
// of a work.
func (o *OpenLibrary) EditionLanguages(ctx context.Context, workKey string, limit int) Result[models.LanguageSet] {
	id := WorkID(workKey)
	if id == "" {
		return Empty[models.LanguageSet]()
	}
	u := fmt.Sprintf("%s/works/%s/editions.json?limit=%d", o.base, url.PathEscape(id), limit)

	var raw struct {
		Entries []struct {
			Languages []struct {
				Key string `json:"key"`
			} `json:"languages"`
		} `json:"entries"`
	}
	if !o.get(ctx, u, &raw) {
		return Empty[models.LanguageSet]()
	}

	langs := models.NewLanguageSet()
	for _, ed := range raw.Entries {
		for _, l := range ed.Languages {
			langs.Add(WorkID(strings.ToLower(l.Key)))
		}
	}
	return Ok(langs)
}

// WorkDetails loads the full work record.
func (o *OpenLibrary) WorkDetails(ctx context.Context, workKey string) Result[models.WorkDetails] {
	id := WorkID(workKey)
	if id == "" {
		return Empty[models.WorkDetails]()
	}
	u := fmt.Sprintf("%s/works/%s.json", o.base, url.PathEscape(id))

	var raw workRecord
	if !o.get(ctx, u, &raw) {
		return Empty[models.WorkDetails]()
	}
	d := raw.details()
	if d.Key == "" {
		d.Key = "/works/" + id
	}
	return Ok(d)
}

// Search runs a title search and returns up to limit hits.
func (o *OpenLibrary) Search(ctx context.Context, title string, limit int) Result[[]models.Candidate] {
	title = strings.TrimSpace(title)
	if title == "" {
		return Empty[[]models.Candidate]()
	}
	q := url.Values{}
	q.Set("title", title)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := o.base + "/search.json?" + q.Encode()

	var raw struct {
		Docs []SearchDoc `json:"docs"`
	}
	if !o.get(ctx, u, &raw) {
		return Empty[[]models.Candidate]()
	}

	docs := capped(raw.Docs, limit)
	out := make([]models.Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Candidate())
	}
	return Ok(out)
}

// capped keeps the first limit items; a non-positive limit keeps all.
// The catalog does not always honour its limit parameter.
func capped[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

func (o *OpenLibrary) get(ctx context.Context, u string, out any) bool {
	if err := o.c.getJSON(ctx, u, out); err != nil {
		logging.Warn().Err(err).Str("provider", o.c.name).Str("url", u).Msg("catalog request failed")
		return false
	}
	return true
}

// SubjectSlug lowercases a subject and joins whitespace runs with "_".
func SubjectSlug(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(subject)), "_")
}

// CoverURL builds a cover image URL; size is S, M or L.
func CoverURL(coversBase string, id int64, size string) string {
	if id <= 0 {
		return ""
	}
	if coversBase == "" {
		coversBase = DefaultCoversURL
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", strings.TrimRight(coversBase, "/"), id, size)
}

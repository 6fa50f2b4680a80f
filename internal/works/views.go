package works

import (
	"time"

	"readdit/internal/recommend"
	"readdit/internal/sources"
	"readdit/internal/textengine"
	"readdit/pkg/models"
)

// SearchHit is a search result card.
type SearchHit struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       string   `json:"author_name"`
	AuthorKey        string   `json:"author_key,omitempty"`
	Subjects         []string `json:"subjects"`
	CoverID          int64    `json:"cover_id,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
	Snippet          string   `json:"snippet"`
	Labels           []string `json:"labels"`
}

func NewSearchHit(c models.Candidate, coversURL string) SearchHit {
	meta := MetaFromCandidate(c)
	labels := textengine.CardLabels(c.Subjects)
	if labels == nil {
		labels = []string{}
	}
	return SearchHit{
		Key:              c.Key,
		Title:            c.Title,
		AuthorName:       c.AuthorName,
		AuthorKey:        c.AuthorKey,
		Subjects:         c.Subjects,
		CoverID:          c.CoverID,
		CoverURL:         sources.CoverURL(coversURL, c.CoverID, "M"),
		FirstPublishYear: c.FirstPublishYear,
		EditionCount:     c.EditionCount,
		Snippet:          textengine.SearchSnippet(meta),
		Labels:           labels,
	}
}

// MetaFromCandidate turns a search hit into the request shape used for
// overview, facts and recommendations.
func MetaFromCandidate(c models.Candidate) models.WorkMeta {
	return models.WorkMeta{
		Title:            c.Title,
		AuthorKey:        c.AuthorKey,
		AuthorName:       c.AuthorName,
		WorkKey:          c.Key,
		Subjects:         c.Subjects,
		FirstPublishYear: c.FirstPublishYear,
		EditionCount:     c.EditionCount,
		CoverID:          c.CoverID,
	}
}

// OverviewView is an Overview with a resolved cover image.
type OverviewView struct {
	recommend.Overview
	CoverURL string `json:"cover_url,omitempty"`
}

func NewOverviewView(ov recommend.Overview, coversURL string) OverviewView {
	return OverviewView{Overview: ov, CoverURL: sources.CoverURL(coversURL, ov.CoverID, "L")}
}

// Voice is a community post with its age rendered for display.
type Voice struct {
	models.CommunityPost
	Age string `json:"age,omitempty"`
}

// VoicesView is the community panel of a work.
type VoicesView struct {
	Title  string  `json:"title"`
	Status string  `json:"status"` // ok or unavailable
	Items  []Voice `json:"items"`
}

func NewVoicesView(title string, posts []models.CommunityPost, ok bool, now time.Time) VoicesView {
	v := VoicesView{Title: title, Status: "ok", Items: make([]Voice, 0, len(posts))}
	if !ok {
		v.Status = "unavailable"
	}
	for _, p := range posts {
		v.Items = append(v.Items, Voice{CommunityPost: p, Age: textengine.RelativeAge(p.Created(), now)})
	}
	return v
}

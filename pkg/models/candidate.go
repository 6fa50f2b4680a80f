package models

// UnknownAuthor is the display name used when no provider field names an author.
const UnknownAuthor = "unknown author"

// Candidate is the normalized, internal form of a work considered as a
// recommendation for a base work.
//
// Every catalog provider shape is mapped into this structure first;
// scoring, filtering and text generation only ever see Candidates.
type Candidate struct {
	Key              string   `json:"key"`                          // provider-stable work key, e.g. "/works/OL45883W"
	Title            string   `json:"title"`                        // display title
	AuthorName       string   `json:"author_name"`                  // may be UnknownAuthor
	AuthorKey        string   `json:"author_key,omitempty"`         // e.g. "OL34184A"
	Subjects         []string `json:"subjects"`                     // lowercase, truncated
	CoverID          int64    `json:"cover_id,omitempty"`           // 0 = no cover
	FirstPublishYear int      `json:"first_publish_year,omitempty"` // 0 = unknown
	EditionCount     int      `json:"edition_count,omitempty"`      // 0 = unknown
}

// ScoredCandidate is a Candidate with its sub-scores and composite score.
type ScoredCandidate struct {
	Candidate

	OL         float64 `json:"ol"`
	Pref       float64 `json:"pref"`
	Reddit     float64 `json:"reddit"`
	FinalScore float64 `json:"final_score"`

	// Languages is filled by the language filter; empty means unknown.
	Languages LanguageSet `json:"languages,omitempty"`
}

// WorkMeta describes the base work a client is looking at. It is the
// request shape for overview, facts and recommendations.
type WorkMeta struct {
	Title            string   `json:"title" binding:"required"`
	AuthorKey        string   `json:"author_key"`
	AuthorName       string   `json:"author_name"`
	WorkKey          string   `json:"work_key"`
	Subjects         []string `json:"subjects"`
	FirstPublishYear int      `json:"first_publish_year"`
	EditionCount     int      `json:"edition_count"`
	CoverID          int64    `json:"cover_id"`
}

// WorkDetails is the subset of a full work record the service uses.
type WorkDetails struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects"`
	Covers      []int64  `json:"covers,omitempty"`
}

// FirstCover returns the first usable cover id, or 0.
func (w WorkDetails) FirstCover() int64 {
	for _, c := range w.Covers {
		if c > 0 {
			return c
		}
	}
	return 0
}

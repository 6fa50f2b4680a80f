package models

// Recommendation is one entry handed to the rendering layer.
type Recommendation struct {
	Title            string   `json:"title"`
	AuthorName       string   `json:"author_name"`
	ReasonText       string   `json:"reason_text"`
	Key              string   `json:"key"`
	AuthorKey        string   `json:"author_key,omitempty"`
	Subjects         []string `json:"subjects"`
	CoverID          int64    `json:"cover_id,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
}

// Recommendation outcomes.
const (
	RecommendationsOK          = "ok"
	RecommendationsUnavailable = "unavailable" // every source came back empty
	RecommendationsNoMatch     = "no_match"    // sources answered, nothing survived filtering
)

// Recommendations is the result of one recommendation request. Items is
// empty whenever Status is not RecommendationsOK.
type Recommendations struct {
	Status string           `json:"status"`
	Items  []Recommendation `json:"items"`
}

func (r Recommendations) Empty() bool {
	return r.Status != RecommendationsOK || len(r.Items) == 0
}

// Fact is one short "fun fact" line about a work.
type Fact struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

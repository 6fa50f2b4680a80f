package textengine

import (
	"fmt"
	"strings"
)

// MaxReasonLength caps the recommendation reason, in runes.
const MaxReasonLength = 220

// maxSignalSentences caps how many signal sentences a reason carries.
const maxSignalSentences = 2

// Signals are the facts about a candidate a reason can cite.
type Signals struct {
	SameAuthor     bool
	SharedLabels   []string
	PrefsBoost     bool
	CommunityBoost bool
}

var closings = []string{
	"Not a random pick, more of a curated one.",
	"Reads like a sensible follow-up.",
	"If you want to stay in this lane, this fits.",
	"Related rather than random.",
}

// Closing picks the closing sentence for a candidate. The same title and
// author always yield the same sentence.
func Closing(title, author string) string {
	seed := StableHash(title + "|" + author)
	return closings[seed%uint32(len(closings))]
}

// RecommendationReason explains why candTitle is recommended for
// baseTitle. Signal sentences are taken in priority order: same author,
// shared labels, genre preferences, community mentions.
func RecommendationReason(baseTitle, candTitle, candAuthor string, sig Signals) string {
	if baseTitle == "" {
		baseTitle = "your book"
	}
	if candTitle == "" {
		candTitle = "this title"
	}
	author := SafeAuthorName(candAuthor)

	var lines []string
	add := func(s string) {
		if len(lines) < maxSignalSentences {
			lines = append(lines, s)
		}
	}

	if sig.SameAuthor && author != "" {
		add(fmt.Sprintf("Same author (%s), a natural next step.", author))
	}
	if len(sig.SharedLabels) > 0 {
		top := sig.SharedLabels
		if len(top) > 2 {
			top = top[:2]
		}
		add("Thematically close: " + strings.Join(top, " · ") + ".")
	}
	if sig.PrefsBoost {
		add("Matches your genre picks, so it ranks higher.")
	}
	if sig.CommunityBoost {
		add("Comes up in community threads in a similar context.")
	}

	if len(lines) == 0 {
		by := ""
		if author != "" {
			by = " by " + author
		}
		lines = append(lines, fmt.Sprintf("Could pair well with “%s”, a solid candidate%s.", SmartTrim(baseTitle, 40), by))
	}

	text := strings.Join(lines, " ") + " " + Closing(candTitle, author)
	return SmartTrim(text, MaxReasonLength)
}

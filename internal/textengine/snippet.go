package textengine

import (
	"fmt"
	"strings"

	"readdit/pkg/models"
)

// SearchSnippet is the neutral one-liner shown under a search hit.
func SearchSnippet(meta models.WorkMeta) string {
	title := meta.Title
	if title == "" {
		title = "Untitled"
	}
	author := SafeAuthorName(meta.AuthorName)
	year := FormatYear(meta.FirstPublishYear)
	tags := PickTopLabels(meta.Subjects, 2)

	var parts []string
	switch {
	case author != "" && year != "":
		parts = append(parts, author+" · "+year)
	case author != "":
		parts = append(parts, author)
	case year != "":
		parts = append(parts, year)
	}
	if len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " · "))
	}

	if line := strings.Join(parts, " · "); line != "" {
		return line
	}
	return fmt.Sprintf("A short overview of “%s”.", SmartTrim(title, 40))
}

// OverviewText is the longer fallback description used when the catalog
// has no description for a work.
func OverviewText(meta models.WorkMeta) string {
	title := meta.Title
	if title == "" {
		title = "This book"
	}
	author := SafeAuthorName(meta.AuthorName)
	year := FormatYear(meta.FirstPublishYear)
	tags := PickTopLabels(meta.Subjects, 3)

	s1 := "“" + title + "”"
	if author != "" {
		s1 += " by " + author
	}
	if year != "" {
		s1 += " (" + year + ")"
	}
	sentences := []string{s1 + "."}

	if len(tags) > 0 {
		sentences = append(sentences,
			"Genre: "+strings.Join(tags, " · ")+".",
			"Thematically it reads focused rather than a random mix.")
	} else {
		sentences = append(sentences, "Voices, recommendations and fun facts have more detail.")
	}
	return SmartTrim(strings.Join(sentences, " "), 260)
}

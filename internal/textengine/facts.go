package textengine

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"readdit/pkg/models"
)

// AllowedLanguages are the edition languages the service prefers:
// English and German under both catalog codes.
var AllowedLanguages = models.NewLanguageSet("eng", "ger", "deu")

// FactInput is everything the fun facts are derived from. Details may be
// nil when the work record could not be loaded.
type FactInput struct {
	Meta      models.WorkMeta
	Details   *models.WorkDetails
	Languages models.LanguageSet
	Posts     []models.CommunityPost
}

var printer = message.NewPrinter(language.English)

// FunFacts builds the light-hearted fact list for a work. It reuses the
// label vocabulary but repeats nothing from the overview.
func FunFacts(in FactInput) []models.Fact {
	subjects := in.Meta.Subjects
	if in.Details != nil {
		subjects = in.Details.Subjects
		if len(subjects) > 30 {
			subjects = subjects[:30]
		}
	}
	labels := PickTopLabels(subjects, 3)

	var facts []models.Fact

	if year := FormatYear(in.Meta.FirstPublishYear); year != "" {
		facts = append(facts, models.Fact{
			Icon: "📅",
			Text: fmt.Sprintf("First published in %s, a few winters ago.", year),
		})
	}

	if in.Details != nil && len(in.Details.Covers) > 0 {
		facts = append(facts, models.Fact{
			Icon: "🖼️",
			Text: fmt.Sprintf("Open Library knows %d cover variants (we show one).", len(in.Details.Covers)),
		})
	}

	if len(labels) > 0 {
		facts = append(facts, models.Fact{
			Icon: "🏷️",
			Text: "Curated shelf: " + strings.Join(labels, " · ") + ".",
		})
	}

	codes := in.Languages.Codes()
	if len(codes) > 6 {
		codes = codes[:6]
	}
	if len(codes) > 0 {
		hint := ""
		if models.NewLanguageSet(codes...).Intersects(AllowedLanguages) {
			hint = " (DE/EN included)"
		}
		facts = append(facts, models.Fact{
			Icon: "🌍",
			Text: fmt.Sprintf("Edition languages (sample): %s%s.", strings.Join(codes, ", "), hint),
		})
	} else {
		facts = append(facts, models.Fact{
			Icon: "🌍",
			Text: "Edition languages are not available right now.",
		})
	}

	if len(in.Posts) > 0 {
		ups, comments := 0, 0
		for _, p := range in.Posts {
			ups += p.Ups
			comments += p.NumComments
		}
		facts = append(facts, models.Fact{
			Icon: "👀",
			Text: printer.Sprintf("Reddit radar: %d top threads cached · 🗳️ %d upvotes · 💬 %d comments.",
				len(in.Posts), ups, comments),
		})
	} else {
		facts = append(facts, models.Fact{
			Icon: "👀",
			Text: "Reddit radar: nothing cached yet, open the voices view and it will load.",
		})
	}

	subjectCount := len(in.Meta.Subjects)
	if in.Details != nil {
		subjectCount = len(in.Details.Subjects)
	}
	if subjectCount > 0 {
		facts = append(facts, models.Fact{
			Icon: "🧩",
			Text: fmt.Sprintf("Open Library lists %d subjects (we keep the most telling ones).", subjectCount),
		})
	}

	return facts
}

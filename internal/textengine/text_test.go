package textengine

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readdit/pkg/models"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "thehobbit", NormalizeTitle("The Hobbit"))
	assert.Equal(t, NormalizeTitle("The Hobbit!"), NormalizeTitle("the hobbit"))
	assert.NotEqual(t, NormalizeTitle("The Hobbit"), NormalizeTitle("The Hobbits"))
	assert.Equal(t, "tomandjerry", NormalizeTitle("Tom & Jerry"))
	assert.Equal(t, "1984", NormalizeTitle("  1984 "))
	assert.Equal(t, "", NormalizeTitle("¡¿…?!"))

	assert.Equal(t, "über", NormalizeTitle("Über"))
	assert.Equal(t, "ノルウェイの森", NormalizeTitle("ノルウェイの森"))
	assert.Equal(t, "海辺のカフカ", NormalizeTitle("海辺の カフカ!"))
	assert.NotEqual(t, NormalizeTitle("海辺のカフカ"), NormalizeTitle("ねじまき鳥クロニクル"))
}

func TestSmartTrim(t *testing.T) {
	t.Run("short input unchanged", func(t *testing.T) {
		assert.Equal(t, "Dune", SmartTrim("Dune", 10))
	})

	t.Run("hard cut without spaces", func(t *testing.T) {
		out := SmartTrim(strings.Repeat("a", 300), 220)
		assert.Equal(t, 220, utf8.RuneCountInString(out))
		assert.True(t, strings.HasSuffix(out, Ellipsis))
	})

	t.Run("backs off to word boundary", func(t *testing.T) {
		in := strings.Repeat("word ", 60)
		out := SmartTrim(in, 220)
		assert.LessOrEqual(t, utf8.RuneCountInString(out), 220)
		assert.True(t, strings.HasSuffix(out, "word"+Ellipsis))
	})

	t.Run("early space is ignored", func(t *testing.T) {
		in := "ab " + strings.Repeat("x", 100)
		out := SmartTrim(in, 50)
		assert.Equal(t, 50, utf8.RuneCountInString(out))
		assert.True(t, strings.HasPrefix(out, "ab x"))
	})

	t.Run("counts runes", func(t *testing.T) {
		out := SmartTrim(strings.Repeat("ü", 30), 10)
		assert.Equal(t, strings.Repeat("ü", 9)+Ellipsis, out)
	})

	t.Run("non positive max", func(t *testing.T) {
		assert.Equal(t, "", SmartTrim("abc", 0))
	})
}

func TestStableHash(t *testing.T) {
	assert.Equal(t, uint32(2166136261), StableHash(""))
	assert.Equal(t, uint32(0xe40c292c), StableHash("a"))
	// One step per UTF-16 unit, not per UTF-8 byte.
	assert.Equal(t, uint32(0x6c0b6c44), StableHash("é"))
	assert.Equal(t, uint32(0xcb31c4b8), StableHash("😀"))
	assert.Equal(t, StableHash("Dune|Frank Herbert"), StableHash("Dune|Frank Herbert"))
}

func TestSafeAuthorName(t *testing.T) {
	assert.Equal(t, "Ursula K. Le Guin", SafeAuthorName("  Ursula K. Le Guin "))
	assert.Equal(t, "", SafeAuthorName(""))
	assert.Equal(t, "", SafeAuthorName(models.UnknownAuthor))
	assert.Equal(t, "", SafeAuthorName("Unknown Author"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Sci-Fi", SubjectToLabel("Science Fiction"))
	assert.Equal(t, "Suspense", SubjectToLabel("Crime novels"))
	assert.Equal(t, "", SubjectToLabel("cooking"))

	subjects := []string{"science fiction", "sci-fi", "space opera", "fantasy", "history", "detective"}
	assert.Equal(t, []string{"Sci-Fi", "Space", "Fantasy"}, PickTopLabels(subjects, 3))

	shared := SharedLabels(
		[]string{"fantasy", "adventure"},
		[]string{"adventure stories", "romance", "fantasy fiction"},
	)
	assert.Equal(t, []string{"Adventure", "Fantasy"}, shared)
	assert.Empty(t, SharedLabels([]string{"cooking"}, []string{"fantasy"}))
}

func TestCardLabels(t *testing.T) {
	assert.Equal(t, []string{"Fantasy", "Adventure"}, CardLabels([]string{"fantasy", "adventure", "romance"}))

	raw := CardLabels([]string{"Cooking -- Regional -- Italy", "Gardening for very patient people", "third"})
	require.Len(t, raw, 2)
	assert.Equal(t, "Cooking", raw[0])
	assert.LessOrEqual(t, utf8.RuneCountInString(raw[1]), 22)
	assert.True(t, strings.HasSuffix(raw[1], Ellipsis))
}

func TestSearchSnippet(t *testing.T) {
	meta := models.WorkMeta{
		Title:            "Dune",
		AuthorName:       "Frank Herbert",
		FirstPublishYear: 1965,
		Subjects:         []string{"science fiction", "space"},
	}
	assert.Equal(t, "Frank Herbert · 1965 · Sci-Fi · Space", SearchSnippet(meta))

	assert.Equal(t, "A short overview of “Dune”.", SearchSnippet(models.WorkMeta{Title: "Dune", AuthorName: models.UnknownAuthor}))
}

func TestOverviewText(t *testing.T) {
	out := OverviewText(models.WorkMeta{
		Title:            "Dune",
		AuthorName:       "Frank Herbert",
		FirstPublishYear: 1965,
		Subjects:         []string{"science fiction"},
	})
	assert.True(t, strings.HasPrefix(out, "“Dune” by Frank Herbert (1965). Genre: Sci-Fi."))
	assert.LessOrEqual(t, utf8.RuneCountInString(out), 260)

	bare := OverviewText(models.WorkMeta{})
	assert.Contains(t, bare, "“This book”.")
	assert.Contains(t, bare, "more detail")
}

func TestRecommendationReason(t *testing.T) {
	t.Run("caps signal sentences", func(t *testing.T) {
		out := RecommendationReason("Dune", "Dune Messiah", "Frank Herbert", Signals{
			SameAuthor:     true,
			SharedLabels:   []string{"Sci-Fi", "Space", "Adventure"},
			PrefsBoost:     true,
			CommunityBoost: true,
		})
		assert.Contains(t, out, "Same author (Frank Herbert)")
		assert.Contains(t, out, "Thematically close: Sci-Fi · Space.")
		assert.NotContains(t, out, "Adventure")
		assert.NotContains(t, out, "genre picks")
		assert.NotContains(t, out, "community threads")
		assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxReasonLength)
	})

	t.Run("generic fallback", func(t *testing.T) {
		out := RecommendationReason("Dune", "Hyperion", "Dan Simmons", Signals{})
		assert.True(t, strings.HasPrefix(out, "Could pair well with “Dune”, a solid candidate by Dan Simmons."))
		assert.True(t, strings.HasSuffix(out, Closing("Hyperion", "Dan Simmons")))
	})

	t.Run("unknown author omitted", func(t *testing.T) {
		out := RecommendationReason("Dune", "Hyperion", models.UnknownAuthor, Signals{SameAuthor: true})
		assert.NotContains(t, out, "Same author")
		assert.NotContains(t, out, "unknown")
		assert.Contains(t, out, "a solid candidate.")
	})

	t.Run("deterministic", func(t *testing.T) {
		sig := Signals{CommunityBoost: true}
		assert.Equal(t,
			RecommendationReason("Dune", "Hyperion", "Dan Simmons", sig),
			RecommendationReason("Dune", "Hyperion", "Dan Simmons", sig))
	})

	t.Run("long titles stay bounded", func(t *testing.T) {
		long := strings.Repeat("Very Long Title ", 30)
		out := RecommendationReason(long, long, strings.Repeat("Author ", 20), Signals{SameAuthor: true, PrefsBoost: true})
		assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxReasonLength)
	})
}

func TestFunFacts(t *testing.T) {
	facts := FunFacts(FactInput{
		Meta: models.WorkMeta{Title: "Dune", FirstPublishYear: 1965},
		Details: &models.WorkDetails{
			Subjects: []string{"science fiction", "space", "politics"},
			Covers:   []int64{1, 2, 3},
		},
		Languages: models.NewLanguageSet("eng", "fre"),
		Posts: []models.CommunityPost{
			{Ups: 1200, NumComments: 30},
			{Ups: 300, NumComments: 20},
		},
	})

	icons := make([]string, 0, len(facts))
	for _, f := range facts {
		icons = append(icons, f.Icon)
	}
	assert.Equal(t, []string{"📅", "🖼️", "🏷️", "🌍", "👀", "🧩"}, icons)
	assert.Contains(t, facts[1].Text, "3 cover variants")
	assert.Equal(t, "Curated shelf: Sci-Fi · Space · Politics.", facts[2].Text)
	assert.Equal(t, "Edition languages (sample): eng, fre (DE/EN included).", facts[3].Text)
	assert.Contains(t, facts[4].Text, "1,500 upvotes")
	assert.Contains(t, facts[4].Text, "50 comments")
}

func TestFunFactsWithoutData(t *testing.T) {
	facts := FunFacts(FactInput{Meta: models.WorkMeta{Title: "Nothing Known"}})
	require.Len(t, facts, 2)
	assert.Contains(t, facts[0].Text, "not available")
	assert.Contains(t, facts[1].Text, "nothing cached yet")
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "", RelativeAge(time.Time{}, now))
	assert.Equal(t, "just now", RelativeAge(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", RelativeAge(now.Add(-90*time.Second), now))
	assert.Equal(t, "3 hours ago", RelativeAge(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", RelativeAge(now.Add(-49*time.Hour), now))
	assert.Equal(t, "1 year ago", RelativeAge(now.AddDate(-1, 0, -1), now))
}

package recommend

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readdit/pkg/models"
)

func TestCatalogScore(t *testing.T) {
	assert.Equal(t, 1.0, CatalogScore(""))
	assert.InDelta(t, 1.02, CatalogScore("Dune"), 1e-9)
	assert.Equal(t, 1.5, CatalogScore(strings.Repeat("x", 10000)))
}

func TestPreferenceScore(t *testing.T) {
	subjects := []string{"science fiction", "space", "politics"}
	assert.Zero(t, PreferenceScore(subjects, nil))
	assert.Equal(t, 1.0, PreferenceScore(subjects, []string{"scifi"}))
	assert.Equal(t, 0.5, PreferenceScore(subjects, []string{"scifi", "romance"}))
	assert.Zero(t, PreferenceScore(nil, []string{"fantasy", "mystery"}))
	assert.Zero(t, PreferenceScore(subjects, []string{"unknown-genre"}))
}

func TestCommunityScore(t *testing.T) {
	t.Run("no posts", func(t *testing.T) {
		assert.Zero(t, CommunityScore("Dune", nil))
	})

	t.Run("cached post score wins", func(t *testing.T) {
		posts := []models.CommunityPost{{Title: "Dune review, a masterpiece", Ups: 50, Score: 50}}
		assert.InDelta(t, math.Log10(51), CommunityScore("Dune", posts), 1e-9)
		assert.InDelta(t, 1.708, CommunityScore("Dune", posts), 1e-3)
	})

	t.Run("engagement score when unscored", func(t *testing.T) {
		posts := []models.CommunityPost{{Title: "Dune review, a masterpiece", Ups: 50}}
		assert.InDelta(t, math.Log10(36), CommunityScore("dune", posts), 1e-9)
	})

	t.Run("max over matching posts", func(t *testing.T) {
		posts := []models.CommunityPost{
			{Title: "Dune Messiah thoughts", Score: 9},
			{Title: "Loved Dune Messiah", Score: 99},
			{Title: "Something else", Score: 999},
		}
		assert.InDelta(t, 2.0, CommunityScore("Dune Messiah", posts), 1e-9)
	})

	t.Run("short titles never match", func(t *testing.T) {
		posts := []models.CommunityPost{{Title: "It was great", Score: 100}}
		assert.Zero(t, CommunityScore("It", posts))
	})

	t.Run("no mention", func(t *testing.T) {
		posts := []models.CommunityPost{{Title: "Foundation", Score: 100}}
		assert.Zero(t, CommunityScore("Dune", posts))
	})
}

func TestScoreSortedAndStable(t *testing.T) {
	cands := []models.Candidate{
		cand("/works/1", "Abcd"),
		cand("/works/2", "A much longer title here"),
		cand("/works/3", "Wxyz"),
		cand("/works/4", "Mid length one"),
		cand("/works/5", "Efgh"),
	}
	out := Score(cands, models.DefaultPreferences(), nil, DefaultWeights())
	require.Len(t, out, 5)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].FinalScore, out[i].FinalScore)
	}
	// equal scores keep input order
	assert.Equal(t, []string{"/works/1", "/works/3", "/works/5"},
		[]string{out[2].Key, out[3].Key, out[4].Key})
}

func TestDuneScenario(t *testing.T) {
	cands := []models.Candidate{
		{Key: "/works/1", Title: "Dune Messiah", Subjects: []string{"science fiction"}},
		{Key: "/works/2", Title: "Children of Dune", Subjects: []string{"space"}},
		{Key: "/works/3", Title: "Hyperion", Subjects: []string{"fantasy"}},
	}
	out := Score(cands, models.DefaultPreferences(), nil, DefaultWeights())

	for _, c := range out {
		assert.Zero(t, c.Reddit, c.Title)
		assert.Zero(t, c.Pref, c.Title)
		assert.InDelta(t, 0.55*c.OL, c.FinalScore, 1e-12)
	}
	assert.Equal(t, "Children of Dune", out[0].Title)
	assert.Equal(t, "Dune Messiah", out[1].Title)
	assert.Equal(t, "Hyperion", out[2].Title)
}

func TestFinalScoreBounds(t *testing.T) {
	titles := []string{"", "Dune", strings.Repeat("long ", 2000)}
	genreSets := [][]string{
		nil,
		{"scifi"},
		{"fantasy", "scifi", "mystery", "romance", "nonfiction", "classics"},
	}
	subjects := []string{"fantasy", "science fiction", "crime", "love", "history", "classics"}

	for _, title := range titles {
		for _, genres := range genreSets {
			prefs := models.Preferences{Genres: genres}
			out := Score([]models.Candidate{{Key: "k", Title: title, Subjects: subjects}}, prefs, nil, DefaultWeights())
			require.Len(t, out, 1)
			sc := out[0]
			assert.GreaterOrEqual(t, sc.OL, 1.0)
			assert.LessOrEqual(t, sc.OL, 1.5)
			assert.GreaterOrEqual(t, sc.Pref, 0.0)
			assert.LessOrEqual(t, sc.Pref, 1.0)
			assert.GreaterOrEqual(t, sc.FinalScore, 0.0)
			assert.LessOrEqual(t, sc.FinalScore, 1.2)
		}
	}
}

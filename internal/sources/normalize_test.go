package sources

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readdit/pkg/models"
)

func TestResolveAuthor(t *testing.T) {
	tests := []struct {
		name     string
		refs     string
		names    []string
		keys     []string
		wantName string
		wantKey  string
	}{
		{
			name:     "entry name",
			refs:     `[{"key":"/authors/OL1A","name":"Frank Herbert"}]`,
			wantName: "Frank Herbert",
			wantKey:  "OL1A",
		},
		{
			name:     "nested author",
			refs:     `[{"author":{"key":"/authors/OL2A","name":"Ursula K. Le Guin"}}]`,
			wantName: "Ursula K. Le Guin",
			wantKey:  "OL2A",
		},
		{
			name:     "flat lists",
			names:    []string{"Dan Simmons", "Other"},
			keys:     []string{"OL3A"},
			wantName: "Dan Simmons",
			wantKey:  "OL3A",
		},
		{
			name:     "nested key without name falls through to flat name",
			refs:     `[{"author":{"key":"/authors/OL4A"}}]`,
			names:    []string{"Iain M. Banks"},
			wantName: "Iain M. Banks",
			wantKey:  "OL4A",
		},
		{
			name:     "nothing known",
			wantName: models.UnknownAuthor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var refs []authorRef
			if tt.refs != "" {
				require.NoError(t, json.Unmarshal([]byte(tt.refs), &refs))
			}
			name, key := resolveAuthor(refs, tt.names, tt.keys)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestPublishYear(t *testing.T) {
	assert.Equal(t, 1965, publishYear(1965, "1970"))
	assert.Equal(t, 1965, publishYear(0, "March 3, 1965"))
	assert.Equal(t, 1966, publishYear(0, "1965-1966"))
	assert.Equal(t, 0, publishYear(0, "12345"))
	assert.Equal(t, 0, publishYear(0, ""))
}

func TestAuthorWorkEntryCandidate(t *testing.T) {
	var e AuthorWorkEntry
	require.NoError(t, json.Unmarshal([]byte(`{
		"key": "/works/OL893415W",
		"title": "Dune Messiah",
		"authors": [{"author": {"key": "/authors/OL79034A"}, "type": {"key": "/type/author_role"}}],
		"covers": [-1, 2421405],
		"subjects": ["Science Fiction", "Arrakis"],
		"first_publish_date": "1969"
	}`), &e))

	c := e.Candidate()
	assert.Equal(t, "/works/OL893415W", c.Key)
	assert.Equal(t, models.UnknownAuthor, c.AuthorName)
	assert.Equal(t, "OL79034A", c.AuthorKey)
	assert.Equal(t, int64(2421405), c.CoverID)
	assert.Equal(t, []string{"science fiction", "arrakis"}, c.Subjects)
	assert.Equal(t, 1969, c.FirstPublishYear)
}

func TestSubjectWorkCandidate(t *testing.T) {
	subjects := make([]string, 20)
	for i := range subjects {
		subjects[i] = "Subject"
	}
	w := SubjectWork{
		Key:          "/works/OL1W",
		Authors:      []authorRef{{Key: "/authors/OL9A", Name: "Ann Leckie"}},
		Subject:      subjects,
		CoverID:      77,
		EditionCount: 4,
	}

	c := w.Candidate()
	assert.Equal(t, "Untitled", c.Title)
	assert.Equal(t, "Ann Leckie", c.AuthorName)
	assert.Equal(t, "OL9A", c.AuthorKey)
	assert.Len(t, c.Subjects, maxSubjects)
	assert.Equal(t, "subject", c.Subjects[0])
	assert.Equal(t, int64(77), c.CoverID)
	assert.Equal(t, 4, c.EditionCount)
}

func TestSearchDocCandidateWithoutSubjects(t *testing.T) {
	c := SearchDoc{Key: "/works/OL2W", Title: "Hyperion"}.Candidate()
	assert.NotNil(t, c.Subjects)
	assert.Empty(t, c.Subjects)
	assert.Equal(t, models.UnknownAuthor, c.AuthorName)
}

func TestTextValue(t *testing.T) {
	var plain, object, missing workRecord
	require.NoError(t, json.Unmarshal([]byte(`{"description":"A desert planet."}`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"description":{"type":"/type/text","value":"Spice."}}`), &object))
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &missing))

	assert.Equal(t, "A desert planet.", plain.details().Description)
	assert.Equal(t, "Spice.", object.details().Description)
	assert.Equal(t, "", missing.details().Description)
	assert.NotNil(t, missing.details().Subjects)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "OL1A", AuthorID("/authors/OL1A"))
	assert.Equal(t, "OL1A", AuthorID("OL1A"))
	assert.Equal(t, "OL2W", WorkID("/works/OL2W"))
	assert.Equal(t, "eng", WorkID("/languages/eng"))
	assert.Equal(t, "science_fiction", SubjectSlug("  Science   Fiction "))
	assert.Equal(t, "", SubjectSlug("   "))
}

func TestResult(t *testing.T) {
	ok := Ok([]int{})
	v, isOK := ok.Get()
	assert.True(t, isOK)
	assert.False(t, ok.IsEmpty())
	assert.Empty(t, v)

	empty := Empty[[]int]()
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.OrZero())
}

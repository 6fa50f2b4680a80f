package sources

import (
	"strings"

	"github.com/goccy/go-json"

	"readdit/pkg/models"
)

// maxSubjects is how many subjects a Candidate keeps.
const maxSubjects = 12

const untitled = "Untitled"

// authorRef is an entry of a provider "authors" array. Depending on the
// endpoint the name and key sit on the entry itself or on a nested
// "author" object.
type authorRef struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Author *struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"author"`
}

// AuthorWorkEntry is one entry of /authors/{id}/works.json.
type AuthorWorkEntry struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Authors          []authorRef `json:"authors"`
	Subjects         []string    `json:"subjects"`
	Covers           []int64     `json:"covers"`
	FirstPublishDate string      `json:"first_publish_date"`
}

// SubjectWork is one work of /subjects/{subject}.json.
type SubjectWork struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Authors          []authorRef `json:"authors"`
	Subject          []string    `json:"subject"`
	CoverID          int64       `json:"cover_id"`
	FirstPublishYear int         `json:"first_publish_year"`
	EditionCount     int         `json:"edition_count"`
}

// SearchDoc is one doc of /search.json.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	Subject          []string `json:"subject"`
	CoverI           int64    `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	EditionCount     int      `json:"edition_count"`
}

// workRecord is /works/{id}.json.
type workRecord struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description textValue `json:"description"`
	Subjects    []string  `json:"subjects"`
	Covers      []int64   `json:"covers"`
}

// textValue accepts both a bare string and a {"type","value"} object.
type textValue string

func (t *textValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = textValue(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		// Unknown shapes are treated as "no description".
		*t = ""
		return nil
	}
	*t = textValue(obj.Value)
	return nil
}

func (e AuthorWorkEntry) Candidate() models.Candidate {
	name, key := resolveAuthor(e.Authors, nil, nil)
	return models.Candidate{
		Key:              e.Key,
		Title:            titleOr(e.Title),
		AuthorName:       name,
		AuthorKey:        key,
		Subjects:         lowerSubjects(e.Subjects),
		CoverID:          firstCover(0, e.Covers),
		FirstPublishYear: publishYear(0, e.FirstPublishDate),
	}
}

func (w SubjectWork) Candidate() models.Candidate {
	name, key := resolveAuthor(w.Authors, nil, nil)
	return models.Candidate{
		Key:              w.Key,
		Title:            titleOr(w.Title),
		AuthorName:       name,
		AuthorKey:        key,
		Subjects:         lowerSubjects(w.Subject),
		CoverID:          firstCover(w.CoverID, nil),
		FirstPublishYear: w.FirstPublishYear,
		EditionCount:     w.EditionCount,
	}
}

func (d SearchDoc) Candidate() models.Candidate {
	name, key := resolveAuthor(nil, d.AuthorName, d.AuthorKey)
	return models.Candidate{
		Key:              d.Key,
		Title:            titleOr(d.Title),
		AuthorName:       name,
		AuthorKey:        key,
		Subjects:         lowerSubjects(d.Subject),
		CoverID:          firstCover(d.CoverI, nil),
		FirstPublishYear: d.FirstPublishYear,
		EditionCount:     d.EditionCount,
	}
}

func (w workRecord) details() models.WorkDetails {
	return models.WorkDetails{
		Key:         w.Key,
		Title:       w.Title,
		Description: strings.TrimSpace(string(w.Description)),
		Subjects:    nonNil(w.Subjects),
		Covers:      positive(w.Covers),
	}
}

// resolveAuthor picks the display name and key of the first author:
// entry name, then nested author name, then the flat name list, then
// models.UnknownAuthor. Keys follow the same order. Keys are returned
// without the "/authors/" prefix.
func resolveAuthor(refs []authorRef, flatNames, flatKeys []string) (name, key string) {
	if len(refs) > 0 {
		a := refs[0]
		name = strings.TrimSpace(a.Name)
		key = a.Key
		if a.Author != nil {
			if name == "" {
				name = strings.TrimSpace(a.Author.Name)
			}
			if key == "" {
				key = a.Author.Key
			}
		}
	}
	if name == "" && len(flatNames) > 0 {
		name = strings.TrimSpace(flatNames[0])
	}
	if key == "" && len(flatKeys) > 0 {
		key = flatKeys[0]
	}
	if name == "" {
		name = models.UnknownAuthor
	}
	return name, AuthorID(key)
}

// AuthorID strips the "/authors/" prefix from an author key.
func AuthorID(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/authors/")
}

// WorkID returns the last path segment of a work key.
func WorkID(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func titleOr(t string) string {
	if t = strings.TrimSpace(t); t != "" {
		return t
	}
	return untitled
}

func lowerSubjects(in []string) []string {
	out := make([]string, 0, min(len(in), maxSubjects))
	for _, s := range in {
		if len(out) == maxSubjects {
			break
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}

func firstCover(id int64, covers []int64) int64 {
	if id > 0 {
		return id
	}
	for _, c := range covers {
		if c > 0 {
			return c
		}
	}
	return 0
}

// publishYear prefers the numeric year, else the last run of four
// digits in a free-form date such as "March 3, 1965".
func publishYear(year int, date string) int {
	if year > 0 {
		return year
	}
	run, last := 0, 0
	for i := 0; i < len(date); i++ {
		c := date[i]
		if c >= '0' && c <= '9' {
			run++
			if run == 4 && (i+1 == len(date) || date[i+1] < '0' || date[i+1] > '9') {
				last = int(date[i-3]-'0')*1000 + int(date[i-2]-'0')*100 + int(date[i-1]-'0')*10 + int(c-'0')
			}
			continue
		}
		run = 0
	}
	return last
}

func positive(in []int64) []int64 {
	var out []int64
	for _, v := range in {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

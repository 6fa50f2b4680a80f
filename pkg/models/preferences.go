package models

import "time"

// Genre tokens a user can select.
var Genres = []string{"fantasy", "scifi", "mystery", "romance", "nonfiction", "classics"}

// IsGenre reports whether g is a known genre token.
func IsGenre(g string) bool {
	for _, x := range Genres {
		if x == g {
			return true
		}
	}
	return false
}

// Preferences is the user-tunable state: three sliders (0-100) and a set
// of selected genre tokens.
type Preferences struct {
	Style      int       `json:"style"`
	Pace       int       `json:"pace"`
	Complexity int       `json:"complexity"`
	Genres     []string  `json:"genres"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// DefaultPreferences returns midpoint sliders and no genres.
func DefaultPreferences() Preferences {
	return Preferences{Style: 50, Pace: 50, Complexity: 50, Genres: []string{}}
}

// HasGenres reports whether any genre is selected.
func (p Preferences) HasGenres() bool {
	return len(p.Genres) > 0
}

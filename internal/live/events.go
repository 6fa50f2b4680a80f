package live

import (
	"time"

	"readdit/pkg/models"
)

// Event types pushed to clients.
const (
	EventWelcome         = "welcome"
	EventOverview        = "overview"
	EventVoices          = "voices"
	EventRecommendations = "recommendations"
	EventFacts           = "facts"
	EventDone            = "done"
	EventPrefsUpdate     = "prefs.update"
	EventError           = "error"
)

type Event struct {
	Type string    `json:"type"`
	Work string    `json:"work,omitempty"` // title of the work the event belongs to
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

func NewEvent(typ, work string, data any) Event {
	return Event{Type: typ, Work: work, Data: data, At: time.Now().UTC()}
}

// inbound is a client message. Only "open" is understood.
type inbound struct {
	Type string          `json:"type"`
	Work models.WorkMeta `json:"work"`
}

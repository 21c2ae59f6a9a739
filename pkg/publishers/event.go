package publishers

import (
	"encoding/json"
	"time"
)

// Event is the payload published downstream for one answered query.
type Event struct {
	Source     string          `json:"source"`
	Query      string          `json:"query"`
	MaxTokens  int             `json:"max_tokens"`
	Answer     json.RawMessage `json:"answer"`
	AnsweredAt time.Time       `json:"answered_at"`
}

// NewEvent builds an Event; answer is embedded verbatim.
func NewEvent(source, query string, maxTokens int, answer []byte) Event {
	raw := json.RawMessage(answer)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return Event{
		Source:     source,
		Query:      query,
		MaxTokens:  maxTokens,
		Answer:     raw,
		AnsweredAt: time.Now().UTC(),
	}
}

func (e Event) attributes() map[string]string {
	return map[string]string{"source": e.Source}
}

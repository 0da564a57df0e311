package models

import "strings"

// Screen is the view the session is currently on.
type Screen string

const (
	ScreenTopic  Screen = "topic"
	ScreenDebate Screen = "debate"
	ScreenReport Screen = "report"
)

// Stance is the side the user defends. The AI always takes the other one.
type Stance string

const (
	StanceNone Stance = ""
	StancePro  Stance = "pro"
	StanceCon  Stance = "con"
)

// Valid reports whether s is one of the two selectable sides.
func (s Stance) Valid() bool {
	return s == StancePro || s == StanceCon
}

// ParseStance accepts the wire values as well as the Turkish stance labels.
func ParseStance(v string) Stance {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "pro", "for", "savunuyorum":
		return StancePro
	case "con", "against", "karşı çıkıyorum":
		return StanceCon
	default:
		return StanceNone
	}
}

type Author string

const (
	AuthorUser Author = "user"
	AuthorAI   Author = "ai"
)

// Message represents a single turn in the debate
type Message struct {
	Author Author `json:"author"`
	Text   string `json:"text"`
}

// CustomTopic is the topic selector value meaning "use the free-text topic".
const CustomTopic = "custom"

// Session is the whole state of one debate arena session.
type Session struct {
	ID          string    `json:"id"`
	Lang        string    `json:"lang"`
	Screen      Screen    `json:"screen"`
	Topic       string    `json:"topic"`
	CustomTopic string    `json:"customTopic"`
	Stance      Stance    `json:"stance"`
	Messages    []Message `json:"messages"`
	Report      *Report   `json:"report,omitempty"`
	ArgumentMap string    `json:"argumentMap,omitempty"`
	IsLoading   bool      `json:"isLoading"`
	Error       string    `json:"error,omitempty"`
}

// ResolvedTopic is the topic the debate is actually about.
func (s Session) ResolvedTopic() string {
	if s.Topic == CustomTopic {
		return strings.TrimSpace(s.CustomTopic)
	}
	return strings.TrimSpace(s.Topic)
}

// Clone returns a copy that shares no mutable memory with s.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	if s.Report != nil {
		r := s.Report.Clone()
		out.Report = &r
	}
	return out
}

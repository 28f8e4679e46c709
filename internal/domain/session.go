// Package domain contains core domain types for the lead relay.
package domain

import (
	"time"
)

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a visitor conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Profile holds what is known about a visitor. Empty fields are unknown.
type Profile struct {
	Name        string `json:"name,omitempty"`
	Contact     string `json:"contact,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
}

// AlertLatches records which operator alerts a session has already produced.
// HighPriorityAlertSent only ever goes from false to true.
type AlertLatches struct {
	AlertSent             bool
	HighPriorityAlertSent bool
}

// Session is one visitor's conversation state.
type Session struct {
	Key          string
	Turns        []Turn
	Profile      Profile
	Latches      AlertLatches
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Clone returns a copy whose turn slice is not shared with s.
func (s Session) Clone() Session {
	c := s
	c.Turns = append([]Turn(nil), s.Turns...)
	return c
}

// RecentTurns returns the last n turns.
func (s Session) RecentTurns(n int) []Turn {
	if n >= len(s.Turns) {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Transcript returns the session turns followed by extra, without modifying s.
func (s Session) Transcript(extra ...Turn) []Turn {
	out := make([]Turn, 0, len(s.Turns)+len(extra))
	out = append(out, s.Turns...)
	return append(out, extra...)
}

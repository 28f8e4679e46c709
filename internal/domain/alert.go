package domain

import "time"

// AlertRecord is a persisted entry for an operator notification that was sent.
type AlertRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	Stage     Stage     `json:"stage"`
	Contact   string    `json:"contact,omitempty"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

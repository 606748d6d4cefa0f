package model

import "time"

// Sample represents one committed sample row.
type Sample struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Faces     int       `json:"faces"`
}

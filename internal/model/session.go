package model

import "time"

// Session represents one capture run stored in the archive.
type Session struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	LogPath   string     `json:"log_path"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Total     int        `json:"total"`
}

// Finished reports whether the session reached its Total row.
func (s *Session) Finished() bool {
	return s.EndedAt != nil
}

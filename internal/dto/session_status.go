package dto

import "time"

// SessionStatus is the read-only view of a running capture session served over HTTP.
type SessionStatus struct {
	ID              string    `json:"id"`
	State           string    `json:"state"`
	StartedAt       time.Time `json:"started_at"`
	FramesProcessed int       `json:"frames_processed"`
	Samples         int       `json:"samples"`
	LastCount       int       `json:"last_count"`
	Total           int       `json:"total"`
	LogPath         string    `json:"log_path"`
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/logger"
)

// StatusProvider is implemented by the running capture session.
type StatusProvider interface {
	Status() dto.SessionStatus
}

// SessionStatusHandler returns the progress of the current session as JSON.
func SessionStatusHandler(provider StatusProvider, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(provider.Status()); err != nil {
			logger.Error("Failed to encode session status: %v", err)
		}
	}
}

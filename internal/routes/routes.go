package routes

import (
	"net/http"

	"github.com/Sid110307/FaceCounter/internal/config"
	"github.com/Sid110307/FaceCounter/internal/handler"
	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/metrics"
	"github.com/Sid110307/FaceCounter/internal/middleware"
	"github.com/Sid110307/FaceCounter/internal/service/websocket"
)

// SetupRoutes registers the preview, status, metrics and log endpoints and wraps
// the mux with the token middleware.
func SetupRoutes(cfg *config.Config, hub *websocket.HubService, status handler.StatusProvider,
	metrics *metrics.Metrics, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, log))
	mux.HandleFunc("/api/session", handler.SessionStatusHandler(status, log))
	mux.Handle("/metrics", metrics.Handler())

	// Log endpoints
	for _, level := range []struct{ path, file string }{
		{"/logs/info", logger.InfoFile},
		{"/logs/warning", logger.WarningFile},
		{"/logs/error", logger.ErrorFile},
	} {
		mux.HandleFunc(level.path, handler.ShowLogsHandler(log, level.file))
		mux.HandleFunc(level.path+"/clear", handler.ClearLogsHandler(log, level.file))
	}

	return middleware.AuthMiddleware(cfg.HTTPToken, mux)
}

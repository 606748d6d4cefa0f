package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Sid110307/FaceCounter/internal/config"
	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/metrics"
	"github.com/Sid110307/FaceCounter/internal/repository/sqlite"
	"github.com/Sid110307/FaceCounter/internal/routes"
	"github.com/Sid110307/FaceCounter/internal/service/ai"
	"github.com/Sid110307/FaceCounter/internal/service/capture"
	"github.com/Sid110307/FaceCounter/internal/service/render"
	"github.com/Sid110307/FaceCounter/internal/service/session"
	"github.com/Sid110307/FaceCounter/internal/service/storage"
	"github.com/Sid110307/FaceCounter/internal/service/websocket"

	"gocv.io/x/gocv"
)

const shutdownTimeout = 5 * time.Second

// ErrStartup marks failures that happen before the capture loop starts.
var ErrStartup = errors.New("startup failed")

type App struct {
	config     *config.Config
	logger     *logger.Logger
	metrics    *metrics.Metrics
	hubService *websocket.HubService
	db         *sqlite.DB
	buffer     *storage.BufferService
}

func NewApp() (*App, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.LogDirectory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}

	a := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New(),
	}
	if cfg.HTTPPort > 0 {
		a.hubService = websocket.NewHubService(log)
	}
	return a, nil
}

// Run opens one capture session and drives it until the source ends, the quit
// key is pressed or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.logger.Close()

	if a.config.DBPath != "" {
		a.openArchive()
		if a.db != nil {
			defer a.db.Close()
		}
	}

	renderer := a.newRenderer()
	sess, err := session.Open[*gocv.Mat](a.sessionOptions(), a.openSource, a.openDetector, renderer, a.logger)
	if err != nil {
		renderer.Close()
		a.logger.Error("%v", err)
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}

	stopBuffer := a.startBuffer()

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	server := a.startServer(serveCtx, sess)

	fmt.Printf("🎥 FaceCounter\n")
	fmt.Printf("📷 Source: %s\n", a.config.Source)
	fmt.Printf("🤖 Cascade: %s\n", a.config.CascadePath)
	fmt.Printf("📄 Log: %s\n", sess.LogPath())
	if server != nil {
		fmt.Printf("📍 URL: http://localhost:%d\n", a.config.HTTPPort)
	}
	if a.config.ShowWindow {
		fmt.Printf("⌨️  Press '%c' to quit\n", a.config.QuitKey)
	}

	runErr := sess.Run(ctx)

	fmt.Printf("✅ Total faces detected: %d\n", sess.Total())
	fmt.Printf("📄 CSV log saved to %s\n", sess.LogPath())

	stopServing()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warning("HTTP server shutdown: %v", err)
		}
	}

	stopBuffer()
	return runErr
}

// startBuffer runs the archive sample buffer in the background. The returned
// function stops it and waits for the final flush.
func (a *App) startBuffer() func() {
	if a.buffer == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.buffer.Run(ctx, storage.SampleFlushInterval)
	}()

	return func() {
		cancel()
		<-done
	}
}

func (a *App) sessionOptions() session.Options {
	opts := session.Options{
		Source:           a.config.Source,
		OutputDirectory:  a.config.OutputDirectory,
		SamplingInterval: a.config.SamplingInterval,
		CheckPeriod:      a.config.CheckPeriod,
		Metrics:          a.metrics,
	}
	if a.db != nil {
		opts.Sessions = sqlite.NewSessionRepository(a.db)
		opts.Samples = a.buffer
	}
	return opts
}

func (a *App) openSource() (session.FrameSource[*gocv.Mat], error) {
	webcam, err := capture.Open(a.config.Source)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Video source %s opened", a.config.Source)
	return webcam, nil
}

func (a *App) openDetector() (session.Detector[*gocv.Mat], error) {
	detector, err := ai.NewCascadeDetector(a.config, a.logger)
	if err != nil {
		return nil, err
	}
	return detector, nil
}

func (a *App) newRenderer() *render.Fanout {
	var outputs []render.FrameRenderer
	if a.config.ShowWindow {
		outputs = append(outputs, render.NewWindowRenderer(a.config.QuitKey))
	}
	if a.hubService != nil {
		outputs = append(outputs, render.NewPreviewRenderer(a.hubService, a.metrics))
	}
	return render.NewFanout(a.logger, outputs...)
}

// openArchive opens the sqlite archive. A failure only disables archiving.
func (a *App) openArchive() {
	if err := os.MkdirAll(filepath.Dir(a.config.DBPath), 0755); err != nil {
		a.logger.Warning("Archive disabled: %v", err)
		return
	}

	db, err := sqlite.New(a.config.DBPath)
	if err != nil {
		a.logger.Warning("Archive disabled: %v", err)
		return
	}
	a.db = db
	a.buffer = storage.NewBufferService(sqlite.NewSampleRepository(db), storage.SampleBufferLimit, a.logger)
	a.logger.Info("Archiving sessions to %s", a.config.DBPath)
}

// startServer starts the hub and the HTTP surface when a port is configured.
func (a *App) startServer(ctx context.Context, status *session.Session[*gocv.Mat]) *http.Server {
	if a.hubService == nil {
		return nil
	}

	go a.hubService.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.HTTPPort),
		Handler: routes.SetupRoutes(a.config, a.hubService, status, a.metrics, a.logger),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed: %v", err)
		}
	}()
	return server
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ornament-detect/internal/config"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/repository/sqlite"
	"ornament-detect/internal/routes"
	"ornament-detect/internal/service"
	"ornament-detect/internal/service/ai"
	"ornament-detect/internal/service/meaning"
	"ornament-detect/internal/service/storage"
	"ornament-detect/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived component of the server. It is built once at
// startup and shared by all requests.
type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	detector *ai.DetectorService
	hub      *websocket.HubService
	handler  http.Handler
}

// New builds the application. A missing model or meanings file does not stop
// startup: the detector runs degraded and the meaning table is empty.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open dataset index: %w", err)
	}
	datasetRepo := sqlite.NewDatasetRepository(db)

	meanings, err := meaning.Load(cfg.MeaningsPath)
	if err != nil {
		log.Error("Error loading meanings, continuing with an empty table: %v", err)
		meanings = meaning.Empty()
	} else {
		log.Info("Loaded %d ornament meanings from %s", meanings.Len(), cfg.MeaningsPath)
	}

	archiver, err := storage.NewArchiverService(cfg, log, datasetRepo)
	if err != nil {
		db.Close()
		log.Close()
		return nil, err
	}

	detector := ai.NewDetectorService(cfg, log)
	hub := websocket.NewHubService(log)

	detection := service.NewDetectionService(cfg, log, detector, meanings, archiver, hub)
	catalog := service.NewCatalogService(cfg, log, detector, meanings, datasetRepo)

	handler := routes.SetupRoutes(routes.Services{
		Detection: detection,
		Catalog:   catalog,
		Events:    hub,
	}, cfg, log)

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		detector: detector,
		hub:      hub,
		handler:  handler,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases the detector pool, the database and the log files.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	go a.hub.Run()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Port),
		Handler:      a.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.logger.Info("Ornament detection server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Model: %s (loaded: %v)", a.config.ModelPath, a.detector.Loaded())
	a.logger.Info("Dataset: %s (archive: %v, mode: %s)", a.config.DatasetDirectory, a.config.ArchiveEnabled, a.config.ArchiveMode)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")
	}

	a.hub.Stop()
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func (a *App) close() {
	a.hub.Stop()
	a.detector.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
	a.logger.Info("Server stopped")
	a.logger.Close()
}

package routes

import (
	"net/http"

	"ornament-detect/internal/config"
	"ornament-detect/internal/handler"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/middleware"
)

// Services groups what the routes need from the application.
type Services struct {
	Detection handler.DetectionProcessor
	Catalog   handler.Catalog
	Events    handler.EventHub
}

// SetupRoutes registers the API, the file servers and the legacy aliases,
// and wraps the mux with tracing, recovery, logging and CORS.
func SetupRoutes(services Services, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	detect := middleware.Chain(
		handler.DetectHandler(services.Detection, cfg, logger),
		middleware.RateLimit(middleware.NewLimiter(cfg.RateLimit, cfg.RateBurst), logger),
	)
	meaning := handler.MeaningHandler(services.Catalog, logger)
	status := handler.StatusHandler(services.Catalog, logger)

	// API endpoints
	mux.Handle("POST /api/detect", detect)
	mux.HandleFunc("GET /api/meanings/{name}", meaning)
	mux.HandleFunc("GET /api/status", status)
	mux.HandleFunc("GET /api/debug", handler.DebugHandler(services.Catalog, logger))
	mux.HandleFunc("GET /api/dataset", handler.DatasetSummaryHandler(services.Catalog, logger))
	mux.HandleFunc("GET /api/dataset/{class}", handler.DatasetClassHandler(services.Catalog, logger))
	mux.HandleFunc("GET /api/dataset/{class}/{filename}", handler.DatasetEntryHandler(services.Catalog, logger))
	mux.HandleFunc("GET /api/logs/{level}", handler.LogsHandler(cfg, logger))
	mux.HandleFunc("DELETE /api/logs/{level}", handler.ClearLogsHandler(logger))
	if services.Events != nil {
		mux.HandleFunc("GET /api/events", handler.EventsHandler(services.Events, logger))
	}

	// Paths used by existing clients
	mux.Handle("POST /detect/", detect)
	mux.HandleFunc("GET /meanings/{name}", meaning)
	mux.HandleFunc("GET /status", status)

	// Files
	mux.Handle("GET /dataset/", http.StripPrefix("/dataset/", http.FileServer(http.Dir(cfg.DatasetDirectory))))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDirectory))))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	mux.HandleFunc("GET /{$}", handler.RootHandler(logger))

	return middleware.Chain(mux,
		middleware.Tracing("ornament-detect"),
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSOrigin),
	)
}

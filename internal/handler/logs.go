package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"ornament-detect/internal/config"
	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
)

var logFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// LogsHandler serves the log file for {level} (info, warning or error) as text/plain.
func LogsHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, ok := logFiles[r.PathValue("level")]
		if !ok {
			respondJSON(w, http.StatusNotFound, dto.ErrorResponse{Detail: "Unknown log level"}, logger)
			return
		}
		serveLogFile(w, r, cfg.LogDirectory, filename)
	}
}

// ClearLogsHandler truncates the log file for {level}.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := r.PathValue("level")
		filename, ok := logFiles[level]
		if !ok {
			respondJSON(w, http.StatusNotFound, dto.ErrorResponse{Detail: "Unknown log level"}, logger)
			return
		}

		if err := logger.CleanLogs(filename); err != nil {
			logger.Error("Error clearing %s: %v", filename, err)
			respondJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Could not clear log file"}, logger)
			return
		}

		logger.Info("Cleared %s log", level)
		respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Log file cleared: " + filename}, logger)
	}
}

// serveLogFile is a helper that sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ornament-detect/internal/config"
	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
)

type stubDetection struct{}

func (stubDetection) Detect(ctx context.Context, upload model.Upload, lang model.Language) (*dto.DetectionResponse, error) {
	return &dto.DetectionResponse{Detections: []dto.DetectionItem{}}, nil
}

type stubCatalog struct{}

func (stubCatalog) Meaning(name string, lang model.Language) (*dto.MeaningResponse, error) {
	return &dto.MeaningResponse{Ornament: name, Meaning: "m", Language: string(lang)}, nil
}
func (stubCatalog) Status() *dto.StatusResponse { return &dto.StatusResponse{Status: "healthy"} }
func (stubCatalog) Debug() *dto.DebugResponse   { return &dto.DebugResponse{} }
func (stubCatalog) DatasetSummary() (*dto.DatasetSummary, error) {
	return &dto.DatasetSummary{}, nil
}
func (stubCatalog) DatasetEntry(class, filename string) (*dto.DatasetEntryInfo, error) {
	return &dto.DatasetEntryInfo{Filename: filename}, nil
}
func (stubCatalog) DatasetPage(class string, page, limit int) (*dto.DatasetPage, error) {
	return &dto.DatasetPage{Class: class}, nil
}

func setupRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "routes_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	cfg := &config.Config{
		DatasetDirectory: filepath.Join(tempDir, "Dataset"),
		UploadsDirectory: filepath.Join(tempDir, "uploads"),
		StaticDirectory:  filepath.Join(tempDir, "static"),
		LogDirectory:     filepath.Join(tempDir, "logs"),
		CORSOrigin:       "*",
	}
	if err := os.MkdirAll(filepath.Join(cfg.DatasetDirectory, "unity"), 0755); err != nil {
		t.Fatalf("Failed to create dataset dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DatasetDirectory, "unity", "unity_a.jpg"), []byte("img"), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	services := Services{Detection: stubDetection{}, Catalog: stubCatalog{}}
	return SetupRoutes(services, cfg, logger.NewWithWriter(&bytes.Buffer{})), cfg
}

func TestSetupRoutes(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodGet, "/api/meanings/unity", http.StatusOK},
		{http.MethodGet, "/meanings/unity?language=kg", http.StatusOK},
		{http.MethodGet, "/api/debug", http.StatusOK},
		{http.MethodGet, "/api/dataset", http.StatusOK},
		{http.MethodGet, "/api/dataset/unity", http.StatusOK},
		{http.MethodGet, "/api/dataset/unity/unity_a.jpg", http.StatusOK},
		{http.MethodGet, "/dataset/unity/unity_a.jpg", http.StatusOK},
		{http.MethodGet, "/dataset/unity/missing.jpg", http.StatusNotFound},
		{http.MethodGet, "/api/detect", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodOptions, "/api/detect", http.StatusNoContent},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.status, rec.Code)
		}
	}
}

func TestSetupRoutes_CORSHeader(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header on API responses")
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

package handler

import (
	"net/http"

	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
)

// Catalog is implemented by service.CatalogService.
type Catalog interface {
	Meaning(name string, lang model.Language) (*dto.MeaningResponse, error)
	Status() *dto.StatusResponse
	Debug() *dto.DebugResponse
	DatasetSummary() (*dto.DatasetSummary, error)
	DatasetPage(class string, page, limit int) (*dto.DatasetPage, error)
	DatasetEntry(class, filename string) (*dto.DatasetEntryInfo, error)
}

// RootHandler answers liveness probes on "/".
func RootHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Ornament Detection API is running"}, logger)
	}
}

// MeaningHandler returns the meaning of {name} in ?language= (default en).
func MeaningHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, err := model.ParseLanguage(r.URL.Query().Get("language"))
		if err != nil {
			respondError(w, r, model.InvalidInput(err.Error()), logger)
			return
		}

		resp, err := catalog.Meaning(r.PathValue("name"), lang)
		if err != nil {
			respondError(w, r, err, logger)
			return
		}
		respondJSON(w, http.StatusOK, resp, logger)
	}
}

func StatusHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, catalog.Status(), logger)
	}
}

func DebugHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, catalog.Debug(), logger)
	}
}

// DatasetSummaryHandler returns per-class image counts.
func DatasetSummaryHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := catalog.DatasetSummary()
		if err != nil {
			respondError(w, r, err, logger)
			return
		}
		respondJSON(w, http.StatusOK, summary, logger)
	}
}

// DatasetClassHandler returns one page of archived images of {class}.
func DatasetClassHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		result, err := catalog.DatasetPage(r.PathValue("class"), page, limit)
		if err != nil {
			respondError(w, r, err, logger)
			return
		}
		respondJSON(w, http.StatusOK, result, logger)
	}
}

// DatasetEntryHandler returns the index record of {class}/{filename}.
func DatasetEntryHandler(catalog Catalog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalog.DatasetEntry(r.PathValue("class"), r.PathValue("filename"))
		if err != nil {
			respondError(w, r, err, logger)
			return
		}
		respondJSON(w, http.StatusOK, entry, logger)
	}
}

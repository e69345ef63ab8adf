package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ornament-detect/internal/config"
	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
)

// multipartMemory is how much of a multipart body is kept in memory before
// the rest spills to disk.
const multipartMemory = 32 << 20

// DetectionProcessor is implemented by service.DetectionService.
type DetectionProcessor interface {
	Detect(ctx context.Context, upload model.Upload, lang model.Language) (*dto.DetectionResponse, error)
}

// DetectHandler accepts a multipart form with an image in "file" and an
// optional "language" (en, kg or ru).
func DetectHandler(processor DetectionProcessor, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.MaxUploadSize > 0 {
			// Leave room for the multipart envelope and form fields.
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize+1<<20)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if isBodyTooLarge(err) {
				logger.Warning("Upload rejected: body exceeds %d bytes", cfg.MaxUploadSize+1<<20)
				respondJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{
					Detail: fmt.Sprintf("Uploaded file exceeds %d MB", cfg.MaxUploadSize>>20),
				}, logger)
				return
			}
			respondError(w, r, model.InvalidInput("Request must be multipart/form-data with a file field"), logger)
			return
		}
		defer r.MultipartForm.RemoveAll()

		lang, err := model.ParseLanguage(r.FormValue("language"))
		if err != nil {
			respondError(w, r, model.InvalidInput(err.Error()), logger)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, r, model.InvalidInput("No file uploaded"), logger)
			return
		}
		defer file.Close()

		upload := model.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}

		resp, err := processor.Detect(r.Context(), upload, lang)
		if err != nil {
			respondError(w, r, err, logger)
			return
		}
		respondJSON(w, http.StatusOK, resp, logger)
	}
}

// isBodyTooLarge reports whether err came from http.MaxBytesReader. Some
// multipart paths flatten the error, so the message is checked too.
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

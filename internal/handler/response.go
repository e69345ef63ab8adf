package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ornament-detect/internal/dto"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
)

// respondJSON writes v with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// respondError translates err into a status code and a {"detail": ...} body.
// Errors outside the model taxonomy never leak their text to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	status, detail := http.StatusInternalServerError, "Internal server error"

	var appErr *model.Error
	isAppErr := errors.As(err, &appErr)

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrProcessingFailure), errors.Is(err, model.ErrModelUnavailable):
		status = http.StatusInternalServerError
	default:
		isAppErr = false
	}

	if isAppErr {
		detail = appErr.Message
		if status == http.StatusInternalServerError && appErr.Err != nil {
			detail = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Warning("%s %s rejected (%d): %v", r.Method, r.URL.Path, status, err)
	}
	respondJSON(w, status, dto.ErrorResponse{Detail: detail}, logger)
}

// atoiDefault parses a positive integer or returns def.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

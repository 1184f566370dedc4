package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/gateway"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/validation"
	"github.com/iudanet/portfolio/pkg/api"
)

// responder writes JSON responses
type responder struct {
	logger *slog.Logger
}

func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// statusFor maps a content error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound),
		errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, content.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, validation.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, validation.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, validation.ErrInvalidDocument),
		errors.Is(err, validation.ErrEmptyFile),
		errors.Is(err, content.ErrInvalidPayload),
		errors.Is(err, content.ErrInvalidPath),
		errors.Is(err, gateway.ErrInvalidOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides internal error details behind the status text
func messageFor(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

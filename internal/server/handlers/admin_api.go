package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/validation"
	"github.com/iudanet/portfolio/pkg/api"
)

const (
	// maxUploadBody bounds a multipart upload request
	maxUploadBody = validation.MaxPDFSize + 1<<20
	// maxPayload bounds a JSON patch
	maxPayload = 1 << 20
	// multipartMemory is kept in memory before spilling to temp files
	multipartMemory = 1 << 20
)

// ContentManager is the content service as used by the admin surfaces
type ContentManager interface {
	Snapshot() content.Snapshot
	Reload(ctx context.Context) error
	InitializeBackend(ctx context.Context) error
	ApplySingletonPatch(ctx context.Context, kind string, payload []byte) (any, error)
	AddRowJSON(ctx context.Context, kind string, payload []byte) (any, error)
	UpdateRowJSON(ctx context.Context, kind, id string, payload []byte) (any, error)
	DeleteRowByKind(ctx context.Context, kind, id string) error
	ReorderRowsByKind(ctx context.Context, kind string, ids []string) (any, error)
	UploadFile(ctx context.Context, req content.UploadRequest) (content.UploadResult, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

// AdminAPIHandler serves the JSON admin API
type AdminAPIHandler struct {
	responder
	content ContentManager
}

// NewAdminAPIHandler creates the JSON admin API handler
func NewAdminAPIHandler(logger *slog.Logger, content ContentManager) *AdminAPIHandler {
	return &AdminAPIHandler{
		responder: responder{logger: logger},
		content:   content,
	}
}

// sendContentError logs err and responds with its mapped status
func (h *AdminAPIHandler) sendContentError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	} else {
		h.logger.WarnContext(ctx, msg, slog.Any("error", err))
	}
	h.sendError(w, messageFor(err, status), status)
}

// Portfolio handles GET /api/v1/admin/portfolio
func (h *AdminAPIHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.content.Snapshot(), http.StatusOK)
}

// Reload handles POST /api/v1/admin/reload. A failed reload still leaves
// seed content in place, so the snapshot is returned with 503.
func (h *AdminAPIHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed", slog.Any("error", err))
		h.sendJSON(w, h.content.Snapshot(), http.StatusServiceUnavailable)
		return
	}
	h.sendJSON(w, h.content.Snapshot(), http.StatusOK)
}

// Initialize handles POST /api/v1/admin/initialize
func (h *AdminAPIHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.content.InitializeBackend(r.Context()); err != nil {
		h.sendContentError(r.Context(), w, "initialize failed", err)
		return
	}
	h.sendJSON(w, h.content.Snapshot(), http.StatusOK)
}

// PatchSingleton handles PATCH /api/v1/admin/singletons/{kind}
func (h *AdminAPIHandler) PatchSingleton(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	v, err := h.content.ApplySingletonPatch(r.Context(), r.PathValue("kind"), payload)
	if err != nil {
		h.sendContentError(r.Context(), w, "singleton update failed", err)
		return
	}
	h.sendJSON(w, v, http.StatusOK)
}

// AddRow handles POST /api/v1/admin/collections/{kind}
func (h *AdminAPIHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	v, err := h.content.AddRowJSON(r.Context(), r.PathValue("kind"), payload)
	if err != nil {
		h.sendContentError(r.Context(), w, "add row failed", err)
		return
	}
	h.sendJSON(w, v, http.StatusCreated)
}

// UpdateRow handles PATCH /api/v1/admin/collections/{kind}/{id}
func (h *AdminAPIHandler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	v, err := h.content.UpdateRowJSON(r.Context(), r.PathValue("kind"), r.PathValue("id"), payload)
	if err != nil {
		h.sendContentError(r.Context(), w, "update row failed", err)
		return
	}
	h.sendJSON(w, v, http.StatusOK)
}

// DeleteRow handles DELETE /api/v1/admin/collections/{kind}/{id}
func (h *AdminAPIHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteRowByKind(r.Context(), r.PathValue("kind"), r.PathValue("id")); err != nil {
		h.sendContentError(r.Context(), w, "delete row failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PUT /api/v1/admin/collections/{kind}/order
func (h *AdminAPIHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req api.ReorderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPayload)).Decode(&req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	v, err := h.content.ReorderRowsByKind(r.Context(), r.PathValue("kind"), req.IDs)
	if err != nil {
		h.sendContentError(r.Context(), w, "reorder failed", err)
		return
	}
	h.sendJSON(w, v, http.StatusOK)
}

// Upload handles POST /api/v1/admin/uploads (multipart: file, folder, path)
func (h *AdminAPIHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := readUpload(w, r)
	if err != nil {
		h.sendContentError(r.Context(), w, "invalid upload", err)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	res, err := h.content.UploadFile(r.Context(), content.UploadRequest{
		Body:     file,
		Folder:   r.FormValue("folder"),
		Path:     r.FormValue("path"),
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		h.sendContentError(r.Context(), w, "upload failed", err)
		return
	}

	h.sendJSON(w, api.UploadResponse{URL: res.URL, Path: res.Path, ContentType: res.ContentType}, http.StatusCreated)
}

// DeleteUpload handles DELETE /api/v1/admin/uploads?path=
func (h *AdminAPIHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	objectPath := r.URL.Query().Get("path")
	if objectPath == "" {
		h.sendError(w, "path is required", http.StatusBadRequest)
		return
	}

	if err := h.content.DeleteFile(r.Context(), objectPath); err != nil {
		h.sendContentError(r.Context(), w, "delete upload failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminAPIHandler) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayload))
	if err != nil {
		h.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return payload, true
}

// readUpload parses a multipart request and opens its "file" part
func readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, fmt.Errorf("%w: request exceeds %d bytes", validation.ErrFileTooLarge, maxUploadBody)
		}
		return nil, nil, fmt.Errorf("%w: %v", content.ErrInvalidPayload, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: file is required", content.ErrInvalidPayload)
	}
	return file, header, nil
}

package api

// ReorderRequest is the body of PUT /api/v1/admin/collections/{kind}/order
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// UploadResponse describes a stored file
type UploadResponse struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// HealthResponse is the body of GET /api/v1/health
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	ContentStatus string `json:"content_status,omitempty"`
}

package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/portfolio/internal/validation"
)

// sniffLen is how much of an upload is read to detect its type
const sniffLen = 3072

var (
	// ErrInvalidUploadURL indicates that the object store returned a URL that is not http(s)
	ErrInvalidUploadURL = errors.New("upload returned an invalid url")

	// ErrInvalidPath indicates an upload folder or path that escapes the object namespace
	ErrInvalidPath = errors.New("invalid upload path")
)

var uploadURLPattern = regexp.MustCompile(`^https?://`)

// UploadRequest describes a file to store. When Path is empty the file is
// stored under Folder with a generated name keeping the extension of
// Filename.
type UploadRequest struct {
	Body     io.Reader
	Folder   string
	Path     string
	Filename string
	Size     int64
}

// UploadResult describes a stored file
type UploadResult struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// UploadFile checks the file against the policy of its folder, stores it
// and returns its public URL. Only the object is written; attaching the URL
// to a record is a separate update.
func (s *Service) UploadFile(ctx context.Context, req UploadRequest) (UploadResult, error) {
	objectPath, err := uploadPath(req)
	if err != nil {
		return UploadResult{}, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return UploadResult{}, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	folder := req.Folder
	if folder == "" {
		folder, _, _ = strings.Cut(objectPath, "/")
	}
	contentType, err := validation.CheckUpload(head, req.Filename, req.Size, validation.PolicyForFolder(folder))
	if err != nil {
		return UploadResult{}, err
	}

	callCtx, cancel := s.callCtx(ctx)
	defer cancel()

	body := io.MultiReader(bytes.NewReader(head), req.Body)
	res, err := s.gw.UploadFile(callCtx, objectPath, contentType, body)
	if err != nil {
		s.recordError(err)
		return UploadResult{}, err
	}
	if !uploadURLPattern.MatchString(res.URL) {
		err := fmt.Errorf("%w: %q", ErrInvalidUploadURL, res.URL)
		s.recordError(err)
		return UploadResult{}, err
	}

	return UploadResult{URL: res.URL, Path: res.Path, ContentType: contentType}, nil
}

// DeleteFile removes a stored file
func (s *Service) DeleteFile(ctx context.Context, objectPath string) error {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return err
	}

	callCtx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := s.gw.DeleteFile(callCtx, clean); err != nil {
		s.recordError(err)
		return err
	}
	return nil
}

func uploadPath(req UploadRequest) (string, error) {
	if req.Path != "" {
		return cleanPath(req.Path)
	}
	if req.Folder == "" {
		return "", fmt.Errorf("%w: folder or path is required", ErrInvalidPath)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(req.Filename))
	return cleanPath(req.Folder + "/" + name)
}

// cleanPath normalizes an object path and rejects paths leaving the
// namespace
func cleanPath(p string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(p, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

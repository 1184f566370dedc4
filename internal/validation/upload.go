package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Upload size ceilings
const (
	MaxImageSize = 5 << 20
	MaxPDFSize   = 10 << 20
)

var (
	// ErrUnsupportedFileType indicates that the uploaded content type is not accepted
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates that the upload exceeds the size ceiling
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile indicates an upload without content
	ErrEmptyFile = errors.New("file is empty")
)

// UploadPolicy describes which files an upload slot accepts.
type UploadPolicy struct {
	AllowImages bool
	AllowPDF    bool
}

var (
	// ImagePolicy accepts images only (profile photo, project and certificate images)
	ImagePolicy = UploadPolicy{AllowImages: true}
	// ResumePolicy accepts PDF documents only
	ResumePolicy = UploadPolicy{AllowPDF: true}
	// MediaPolicy accepts images and PDFs
	MediaPolicy = UploadPolicy{AllowImages: true, AllowPDF: true}
)

// PolicyForFolder returns the policy for an upload folder
func PolicyForFolder(folder string) UploadPolicy {
	switch folder {
	case "resume":
		return ResumePolicy
	case "profile", "projects", "certifications":
		return ImagePolicy
	default:
		return MediaPolicy
	}
}

// CheckUpload sniffs head (the first bytes of the file) and returns the
// detected content type when it satisfies the policy. The declared
// filename only matters for PDFs, which are also accepted by extension.
func CheckUpload(head []byte, filename string, size int64, policy UploadPolicy) (string, error) {
	if size == 0 || len(head) == 0 {
		return "", ErrEmptyFile
	}

	mt := mimetype.Detect(head)
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	isImage := strings.HasPrefix(contentType, "image/")
	isPDF := mt.Is("application/pdf") || strings.EqualFold(filepath.Ext(filename), ".pdf")

	switch {
	case policy.AllowImages && isImage:
		if size > MaxImageSize {
			return "", fmt.Errorf("%w: image exceeds %d MiB", ErrFileTooLarge, MaxImageSize>>20)
		}
		return contentType, nil
	case policy.AllowPDF && isPDF:
		if size > MaxPDFSize {
			return "", fmt.Errorf("%w: PDF exceeds %d MiB", ErrFileTooLarge, MaxPDFSize>>20)
		}
		return "application/pdf", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
}

package storage

import "errors"

// Common storage errors
var (
	// ErrDocumentNotFound indicates that a document or collection row does not exist
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrObjectNotFound indicates that a stored file does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrNoPublicURL indicates that the object store cannot produce a fetchable URL
	ErrNoPublicURL = errors.New("object store cannot produce a public URL")
)

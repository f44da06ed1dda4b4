package domain

import (
	"errors"
)

var (
	// ErrInvalidInput signals a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentExists signals an id collision on insert.
	ErrDocumentExists = errors.New("document already exists")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrMalformedRecord signals a stored record with missing or invalid required fields.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

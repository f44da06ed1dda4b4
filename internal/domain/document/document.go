package document

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxTitleLength is the maximum title length in bytes.
const MaxTitleLength = 512

// FileType is informational metadata about the uploaded source.
type FileType string

// Supported file types.
const (
	FileTypeText     FileType = "text"
	FileTypeMarkdown FileType = "markdown"
	FileTypeHTML     FileType = "html"
	FileTypePDF      FileType = "pdf"
)

// IsValid checks if the file type is one of the supported values.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypeText, FileTypeMarkdown, FileTypeHTML, FileTypePDF:
		return true
	}
	return false
}

// Document is the document aggregate (immutable value object).
type Document struct {
	id        string
	title     string
	content   string
	fileType  FileType
	createdAt int64 // unix millis
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title and content are required; an empty
// file type defaults to text.
func New(id, title, content string, fileType FileType, createdAt int64) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(title) == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return Document{}, fmt.Errorf("title too long (max %d bytes)", MaxTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if fileType == "" {
		fileType = FileTypeText
	}
	if !fileType.IsValid() {
		return Document{}, fmt.Errorf("unsupported file type %q", fileType)
	}

	return Document{
		id:        id,
		title:     title,
		content:   content,
		fileType:  fileType,
		createdAt: createdAt,
	}, nil
}

// ValidateID checks the document identifier format.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, content string, fileType FileType, createdAt int64) Document {
	return Document{id: id, title: title, content: content, fileType: fileType, createdAt: createdAt}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// FileType returns the informational source type.
func (d *Document) FileType() FileType { return d.fileType }

// CreatedAt returns the creation time in unix millis.
func (d *Document) CreatedAt() int64 { return d.createdAt }

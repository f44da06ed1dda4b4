package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/usecase/indexing"
)

// UploadInput is a new document without an identifier.
type UploadInput struct {
	Title    string
	Content  string
	FileType domdoc.FileType
}

// Service handles document upload and lookup.
type Service struct {
	repo    Repository
	indexer Indexer
	newID   func() string
	now     func() time.Time
}

// New creates a document service.
func New(repo Repository, indexer Indexer) *Service {
	return &Service{
		repo:    repo,
		indexer: indexer,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Upload stores a document under a fresh id and indexes it.
// The row is kept when indexing fails; the caller sees the indexing error.
func (s *Service) Upload(ctx context.Context, in UploadInput) (domdoc.Document, int, error) {
	doc, err := domdoc.New(s.newID(), in.Title, in.Content, in.FileType, s.now().UnixMilli())
	if err != nil {
		return domdoc.Document{}, 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err = s.repo.Create(ctx, &doc); err != nil {
		return domdoc.Document{}, 0, fmt.Errorf("create document: %w", err)
	}

	res, err := s.indexer.Index(ctx, indexing.Input{
		DocumentID: doc.ID(),
		Title:      doc.Title(),
		Content:    doc.Content(),
		FileType:   doc.FileType(),
	})
	if err != nil {
		return domdoc.Document{}, 0, fmt.Errorf("index document %s: %w", doc.ID(), err)
	}
	return doc, res.TermsIndexed, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

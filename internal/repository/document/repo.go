package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	InsertDocument(ctx context.Context, row db.DocumentRow) error
	GetDocuments(ctx context.Context, ids []string) ([]db.DocumentRow, error)
	CountDocuments(ctx context.Context) (int, error)
}

// Repo implements the document repository consumed by the usecases.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create inserts a new document. An existing id yields domain.ErrDocumentExists.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document) error {
	if err := r.store.InsertDocument(ctx, toRow(doc)); err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrDocumentExists)
		}
		return fmt.Errorf("insert document %s: %w", doc.ID(), err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	docs, err := r.GetMany(ctx, []string{id})
	if err != nil {
		return domdoc.Document{}, err
	}
	if len(docs) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return docs[0], nil
}

// GetMany returns the documents found for ids; missing ids are absent from the result.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domdoc.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.store.GetDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(rows))
	for i := range rows {
		doc, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.CountDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func toRow(doc *domdoc.Document) db.DocumentRow {
	return db.DocumentRow{
		ID:        doc.ID(),
		Title:     doc.Title(),
		Content:   doc.Content(),
		FileType:  string(doc.FileType()),
		CreatedAt: doc.CreatedAt(),
	}
}

func fromRow(row *db.DocumentRow) (domdoc.Document, error) {
	if row.ID == "" {
		return domdoc.Document{}, fmt.Errorf("document row without id: %w", domain.ErrMalformedRecord)
	}
	if row.Title == "" {
		return domdoc.Document{}, fmt.Errorf("document %s has no title: %w", row.ID, domain.ErrMalformedRecord)
	}
	fileType := domdoc.FileType(row.FileType)
	if fileType == "" {
		fileType = domdoc.FileTypeText
	}
	return domdoc.Reconstruct(row.ID, row.Title, row.Content, fileType, row.CreatedAt), nil
}

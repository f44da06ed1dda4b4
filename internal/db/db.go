package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	DocumentTable
	PostingTable
	EmbeddingTable
	IndexTable
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentRow is the stored shape of a document.
type DocumentRow struct {
	ID        string
	Title     string
	Content   string
	FileType  string
	CreatedAt int64 // unix millis
}

// PostingRow is the stored shape of an inverted index entry.
type PostingRow struct {
	Term          string
	DocumentID    string
	TFIDF         float64
	TermFrequency float64
	Positions     []int
}

// EmbeddingRow is the stored shape of a document vector.
type EmbeddingRow struct {
	DocumentID string
	Vector     []float32
}

// DocumentTable stores documents.
type DocumentTable interface {
	// InsertDocument returns ErrKeyExists if the id is taken.
	InsertDocument(ctx context.Context, row DocumentRow) error
	// GetDocuments returns the rows found for ids; missing ids are skipped.
	GetDocuments(ctx context.Context, ids []string) ([]DocumentRow, error)
	CountDocuments(ctx context.Context) (int, error)
}

// PostingTable reads the append-only inverted index.
type PostingTable interface {
	// CountPostings returns the number of stored postings for term.
	CountPostings(ctx context.Context, term string) (int, error)
	// PostingsForTerms returns every posting whose term is in terms.
	PostingsForTerms(ctx context.Context, terms []string) ([]PostingRow, error)
}

// EmbeddingTable reads the one-vector-per-document table.
type EmbeddingTable interface {
	// ListEmbeddings returns up to limit vectors in no particular order.
	ListEmbeddings(ctx context.Context, limit int) ([]EmbeddingRow, error)
}

// IndexTable writes a document's postings and vector together.
type IndexTable interface {
	// WriteIndex appends the postings and replaces the document's vector as
	// one unit: either both are stored or neither is.
	WriteIndex(ctx context.Context, postings []PostingRow, embedding EmbeddingRow) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

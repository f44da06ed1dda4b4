package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// IndexRequest is the body of POST /index.
type IndexRequest struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	FileType   string `json:"fileType,omitempty"`
}

// IndexResponse is returned by POST /index.
type IndexResponse struct {
	Success      bool `json:"success"`
	TermsIndexed int  `json:"termsIndexed"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"searchType,omitempty"`
}

// SearchResponse is returned by both search routes.
type SearchResponse struct {
	Results []ScoredResult `json:"results"`
}

// ScoredResult is a document with its retrieval scores.
type ScoredResult struct {
	Document
	KeywordScore  float64  `json:"keywordScore"`
	SemanticScore float64  `json:"semanticScore"`
	HybridScore   *float64 `json:"hybridScore,omitempty"`
}

// UploadRequest is the body of POST /documents.
type UploadRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FileType string `json:"fileType,omitempty"`
}

// UploadResponse is returned by POST /documents.
type UploadResponse struct {
	Document     Document `json:"document"`
	TermsIndexed int      `json:"termsIndexed"`
}

// Document is the wire form of a stored document.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	FileType  string `json:"file_type"`
	CreatedAt string `json:"created_at"`
}

// CountResponse is returned by GET /documents/count.
type CountResponse struct {
	Count int `json:"count"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func documentToDTO(doc *domdoc.Document) Document {
	return Document{
		ID:        doc.ID(),
		Title:     doc.Title(),
		Content:   doc.Content(),
		FileType:  string(doc.FileType()),
		CreatedAt: time.UnixMilli(doc.CreatedAt()).UTC().Format(time.RFC3339Nano),
	}
}

func scoredToDTO(hit *result.Scored, m mode.Mode) ScoredResult {
	out := ScoredResult{
		Document:      documentToDTO(&hit.Document),
		KeywordScore:  hit.KeywordScore,
		SemanticScore: hit.SemanticScore,
	}
	if m == mode.Hybrid {
		h := hit.HybridScore
		out.HybridScore = &h
	}
	return out
}

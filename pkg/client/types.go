package client

import "time"

// SearchMode selects the retrieval strategy.
type SearchMode string

// Search mode constants.
const (
	ModeKeyword  SearchMode = "keyword"
	ModeSemantic SearchMode = "semantic"
	ModeHybrid   SearchMode = "hybrid"
)

// Document is a stored document.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Hit is one search result. HybridScore is set only in hybrid mode.
type Hit struct {
	Document
	KeywordScore  float64  `json:"keywordScore"`
	SemanticScore float64  `json:"semanticScore"`
	HybridScore   *float64 `json:"hybridScore,omitempty"`
}

// IndexRequest indexes a document under a caller-chosen id.
type IndexRequest struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	FileType   string `json:"fileType,omitempty"`
}

// UploadRequest stores and indexes a new document; the server assigns the id.
type UploadRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FileType string `json:"fileType,omitempty"`
}

// Upload is the result of a successful upload.
type Upload struct {
	Document     Document `json:"document"`
	TermsIndexed int      `json:"termsIndexed"`
}

// SearchResult holds the ranked hits and response metadata.
type SearchResult struct {
	Hits []Hit
	// Degraded is true when the semantic branch was skipped.
	Degraded        bool
	EmbeddingTokens int
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

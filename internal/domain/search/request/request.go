package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	// TopK caps every branch and the fused result list.
	TopK = 10
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
}

// New validates and normalizes search parameters. An empty mode means hybrid.
func New(query string, m mode.Mode) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	return Request{query: query, searchMode: m}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Mode returns the retrieval mode.
func (r *Request) Mode() mode.Mode { return r.searchMode }

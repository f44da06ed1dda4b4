package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/usecase/indexing"
)

// maxBodyBytes caps request bodies; documents are far smaller.
const maxBodyBytes = 1 << 20

// Indexer indexes a document under a caller-chosen id.
type Indexer interface {
	Index(ctx context.Context, in indexing.Input) (indexing.Result, error)
}

// Searcher runs a retrieval request.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Scored, error)
}

// Documents uploads and reads documents.
type Documents interface {
	Upload(ctx context.Context, in documentuc.UploadInput) (domdoc.Document, int, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Count(ctx context.Context) (int, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the HTTP API.
type Server struct {
	indexer       Indexer
	search        Searcher
	documents     Documents
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	indexer Indexer,
	search Searcher,
	documents Documents,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		indexer:   indexer,
		search:    search,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		invalidInputHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrDocumentExists, http.StatusConflict),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusInternalServerError),
	}
	return s
}

// Handler returns the router with all routes and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Post("/index", s.IndexDocument)
	r.Post("/search", s.SearchDocuments)
	r.Get("/search", s.SearchDocumentsQuery)
	r.Post("/documents", s.UploadDocument)
	r.Get("/documents/count", s.CountDocuments)
	r.Get("/documents/{id}", s.GetDocument)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// IndexDocument handles POST /index.
func (s *Server) IndexDocument(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.indexer.Index(ctx, indexing.Input{
		DocumentID: req.DocumentID,
		Title:      req.Title,
		Content:    req.Content,
		FileType:   domdoc.FileType(req.FileType),
		Source:     indexing.SourceHTTP,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, IndexResponse{Success: true, TermsIndexed: res.TermsIndexed})
}

// SearchDocuments handles POST /search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.runSearch(w, r, req.Query, req.SearchType)
}

// SearchDocumentsQuery handles GET /search?query=&searchType=.
func (s *Server) SearchDocumentsQuery(w http.ResponseWriter, r *http.Request) {
	var query string
	if err := runtime.BindQueryParameter("form", true, true, "query", r.URL.Query(), &query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter: query")
		return
	}
	var searchType *string
	if err := runtime.BindQueryParameter("form", true, false, "searchType", r.URL.Query(), &searchType); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter: searchType")
		return
	}

	st := ""
	if searchType != nil {
		st = *searchType
	}
	s.runSearch(w, r, query, st)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query, searchType string) {
	searchReq, err := request.New(query, mode.Mode(searchType))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	hits, err := s.search.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results := make([]ScoredResult, len(hits))
	for i := range hits {
		results[i] = scoredToDTO(&hits[i], searchReq.Mode())
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// UploadDocument handles POST /documents.
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	doc, terms, err := s.documents.Upload(ctx, documentuc.UploadInput{
		Title:    req.Title,
		Content:  req.Content,
		FileType: domdoc.FileType(req.FileType),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/documents/"+doc.ID())
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, UploadResponse{Document: documentToDTO(&doc), TermsIndexed: terms})
}

// CountDocuments handles GET /documents/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request) {
	n, err := s.documents.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path parameter: id")
		return
	}

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// HealthCheck handles GET /health. Only an unreachable store is a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage == nil {
		return
	}
	if usage.Used {
		w.Header().Set(metrics.HeaderEmbeddingTokens, strconv.Itoa(usage.TotalTokens))
	}
	if usage.Degraded {
		w.Header().Set(metrics.HeaderSearchDegraded, "true")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrDocumentExists,
		domain.ErrVectorDimMismatch,
		domain.ErrMalformedRecord,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeDomainMessage(err))
		return true
	}
}

// invalidInputHandler echoes validation details, which carry no internals.
func invalidInputHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

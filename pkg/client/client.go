package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to a docsearch server. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}
	return &Client{baseURL: u, http: hc, userAgent: cfg.userAgent}, nil
}

// Index indexes a document under req.DocumentID and returns the number of distinct terms.
func (c *Client) Index(ctx context.Context, req IndexRequest) (int, error) {
	var out struct {
		Success      bool `json:"success"`
		TermsIndexed int  `json:"termsIndexed"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/index", req, &out); err != nil {
		return 0, err
	}
	return out.TermsIndexed, nil
}

// Upload stores and indexes a new document.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (Upload, error) {
	var out Upload
	if _, err := c.do(ctx, http.MethodPost, "/documents", req, &out); err != nil {
		return Upload{}, err
	}
	return out, nil
}

// Search runs a query. An empty mode lets the server pick its default.
func (c *Client) Search(ctx context.Context, query string, mode SearchMode) (SearchResult, error) {
	body := struct {
		Query      string     `json:"query"`
		SearchType SearchMode `json:"searchType,omitempty"`
	}{Query: query, SearchType: mode}

	var out struct {
		Results []Hit `json:"results"`
	}
	h, err := c.do(ctx, http.MethodPost, "/search", body, &out)
	if err != nil {
		return SearchResult{}, err
	}

	res := SearchResult{Hits: out.Results, Degraded: h.Get("X-Search-Degraded") == "true"}
	if v := h.Get("X-Embedding-Tokens"); v != "" {
		res.EmbeddingTokens, _ = strconv.Atoi(v)
	}
	return res, nil
}

// Get fetches a document by id.
func (c *Client) Get(ctx context.Context, id string) (Document, error) {
	var out Document
	if _, err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &out); err != nil {
		return Document{}, err
	}
	return out, nil
}

// Count returns the number of stored documents.
func (c *Client) Count(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/documents/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Health returns the health report. An unhealthy server yields the report and an *APIError.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) do(
	ctx context.Context, method, path string, in, out any,
) (http.Header, error) {
	u := c.baseURL.JoinPath(path)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		// health reports carry a body on 503 too
		if out != nil && resp.StatusCode == http.StatusServiceUnavailable {
			_ = json.Unmarshal(raw, out)
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.Header, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.Header, nil
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/docsearch/internal/transport/kafka"
	"github.com/kailas-cloud/docsearch/pkg/client"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeClient struct {
	indexReq  client.IndexRequest
	uploadReq client.UploadRequest
	query     string
	mode      client.SearchMode
	result    client.SearchResult
	doc       client.Document
	health    client.Health
	err       error
}

func (f *fakeClient) Index(_ context.Context, req client.IndexRequest) (int, error) {
	f.indexReq = req
	return 3, f.err
}

func (f *fakeClient) Upload(_ context.Context, req client.UploadRequest) (client.Upload, error) {
	f.uploadReq = req
	return client.Upload{Document: client.Document{ID: "generated-id", Title: req.Title}, TermsIndexed: 2}, f.err
}

func (f *fakeClient) Search(_ context.Context, q string, m client.SearchMode) (client.SearchResult, error) {
	f.query, f.mode = q, m
	return f.result, f.err
}

func (f *fakeClient) Get(_ context.Context, _ string) (client.Document, error) {
	return f.doc, f.err
}

func (f *fakeClient) Count(_ context.Context) (int, error) { return 42, f.err }

func (f *fakeClient) Health(_ context.Context) (client.Health, error) { return f.health, f.err }

type fakePublisher struct {
	brokers []string
	topic   string
	events  []kafka.IndexEvent
	closed  bool
}

func (p *fakePublisher) Publish(_ context.Context, ev kafka.IndexEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

type harness struct {
	fc      *fakeClient
	pub     *fakePublisher
	server  string
	timeout time.Duration
}

func run(t *testing.T, h *harness, args ...string) (string, error) {
	t.Helper()
	a := &app{
		v: viper.New(),
		newClient: func(server string, timeout time.Duration) (apiClient, error) {
			h.server, h.timeout = server, timeout
			return h.fc, nil
		},
		newPublisher: func(brokers []string, topic string) publisher {
			h.pub.brokers, h.pub.topic = brokers, topic
			return h.pub
		},
	}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newHarness() *harness {
	return &harness{fc: &fakeClient{}, pub: &fakePublisher{}}
}

func TestUpload_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.md")
	require.NoError(t, os.WriteFile(path, []byte("cats are great pets"), 0o600))

	h := newHarness()
	out, err := run(t, h, "upload", "--file", path)
	require.NoError(t, err)

	assert.Equal(t, "pets", h.fc.uploadReq.Title)
	assert.Equal(t, "cats are great pets", h.fc.uploadReq.Content)
	assert.Equal(t, "markdown", h.fc.uploadReq.FileType)
	assert.Contains(t, out, "generated-id")
	assert.Contains(t, out, "2 terms")
}

func TestUpload_RequiresContentOrFile(t *testing.T) {
	_, err := run(t, newHarness(), "upload", "--title", "x")
	require.Error(t, err)
}

func TestUpload_RequiresTitleForInlineContent(t *testing.T) {
	_, err := run(t, newHarness(), "upload", "--content", "cats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title is required")
}

func TestIndex(t *testing.T) {
	h := newHarness()
	out, err := run(t, h, "index", "doc-1", "--title", "Pets", "--content", "cats are great pets", "--type", "text")
	require.NoError(t, err)

	assert.Equal(t, client.IndexRequest{
		DocumentID: "doc-1", Title: "Pets", Content: "cats are great pets", FileType: "text",
	}, h.fc.indexReq)
	assert.Contains(t, out, "indexed doc-1 (3 terms)")
}

func TestSearch_Table(t *testing.T) {
	hybrid := 0.68
	h := newHarness()
	h.fc.result = client.SearchResult{Hits: []client.Hit{{
		Document:      client.Document{ID: "d1", Title: "Pets", Content: "cats are great pets"},
		KeywordScore:  0.5,
		SemanticScore: 0.8,
		HybridScore:   &hybrid,
	}}}

	out, err := run(t, h, "search", "great", "cats", "--type", "hybrid")
	require.NoError(t, err)

	assert.Equal(t, "great cats", h.fc.query)
	assert.Equal(t, client.ModeHybrid, h.fc.mode)
	assert.Contains(t, out, "d1")
	assert.Contains(t, out, "0.6800")
	assert.Contains(t, out, "1 result(s), mode hybrid")
}

func TestSearch_DegradedAndEmpty(t *testing.T) {
	h := newHarness()
	h.fc.result = client.SearchResult{Degraded: true}

	out, err := run(t, h, "search", "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "semantic search unavailable")
	assert.Contains(t, out, "no results")
	assert.Equal(t, client.SearchMode(""), h.fc.mode)
}

func TestSearch_InvalidType(t *testing.T) {
	_, err := run(t, newHarness(), "search", "cats", "--type", "fuzzy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--type must be")
}

func TestSearch_JSON(t *testing.T) {
	h := newHarness()
	h.fc.result = client.SearchResult{Hits: []client.Hit{{Document: client.Document{ID: "d1"}, KeywordScore: 1}}}

	out, err := run(t, h, "search", "cats", "--json")
	require.NoError(t, err)

	var got struct {
		Results  []client.Hit `json:"results"`
		Degraded bool         `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "d1", got.Results[0].ID)
}

func TestGet_NotFound(t *testing.T) {
	h := newHarness()
	h.fc.err = &client.APIError{StatusCode: 404, Message: "document not found"}

	_, err := run(t, h, "get", "missing")
	require.Error(t, err)
	assert.Equal(t, "document missing not found", err.Error())
}

func TestGet(t *testing.T) {
	h := newHarness()
	h.fc.doc = client.Document{ID: "d1", Title: "Pets", Content: "cats are great pets", FileType: "text"}

	out, err := run(t, h, "get", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "cats are great pets")
}

func TestCount(t *testing.T) {
	out, err := run(t, newHarness(), "count")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestHealth_Degraded(t *testing.T) {
	h := newHarness()
	h.fc.health = client.Health{Status: "degraded", Checks: map[string]string{"database": "ok", "embedding": "error"}}

	out, err := run(t, h, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "status: degraded")
	assert.Contains(t, out, "embedding")
}

func TestHealth_UnreachableServer(t *testing.T) {
	h := newHarness()
	h.fc.err = errors.New("connection refused")

	_, err := run(t, h, "health")
	require.Error(t, err)
}

func TestServerFlagAndEnv(t *testing.T) {
	t.Setenv("DOCSEARCH_SERVER", "http://from-env:9000")

	h := newHarness()
	_, err := run(t, h, "count")
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9000", h.server)

	_, err = run(t, h, "count", "--server", "http://from-flag:1234", "--timeout", "5s")
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:1234", h.server)
	assert.Equal(t, 5*time.Second, h.timeout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsearchctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://from-file:7000\nkafka:\n  brokers: [k1:9092]\n"), 0o600))

	h := newHarness()
	_, err := run(t, h, "--config", path, "enqueue", "doc-9", "--title", "t", "--content", "c")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092"}, h.pub.brokers)
	assert.Equal(t, "docsearch.index", h.pub.topic)
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := run(t, newHarness(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "count")
	require.Error(t, err)
}

func TestEnqueue(t *testing.T) {
	h := newHarness()
	out, err := run(t, h, "enqueue", "doc-7",
		"--title", "Dogs", "--content", "dogs are loyal companions",
		"--brokers", "b1:9092,b2:9092", "--topic", "custom.topic")
	require.NoError(t, err)

	assert.Equal(t, []string{"b1:9092", "b2:9092"}, h.pub.brokers)
	assert.Equal(t, "custom.topic", h.pub.topic)
	require.Len(t, h.pub.events, 1)
	assert.Equal(t, kafka.IndexEvent{DocumentID: "doc-7", Title: "Dogs", Content: "dogs are loyal companions"}, h.pub.events[0])
	assert.True(t, h.pub.closed)
	assert.Contains(t, out, "enqueued doc-7 to custom.topic")
}

func TestEnqueue_RequiresBrokers(t *testing.T) {
	_, err := run(t, newHarness(), "enqueue", "doc-7", "--title", "t", "--content", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--brokers is required")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t c"))
	long := snippet(string(bytes.Repeat([]byte("x"), 200)))
	assert.Len(t, long, snippetLen)
	assert.Equal(t, "...", long[len(long)-3:])
}

func TestFileTypeFromExt(t *testing.T) {
	assert.Equal(t, "markdown", fileTypeFromExt("a.MD"))
	assert.Equal(t, "html", fileTypeFromExt("a.htm"))
	assert.Equal(t, "pdf", fileTypeFromExt("a.pdf"))
	assert.Equal(t, "text", fileTypeFromExt("a.txt"))
}

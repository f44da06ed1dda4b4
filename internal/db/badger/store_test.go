package badger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/docsearch/internal/db"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestOpen_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(Config{Path: dir}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := Open(Config{Path: file}, nil)
	assert.Error(t, err)
}

func TestOpen_NoPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
}

func TestPing_AfterClose(t *testing.T) {
	s, err := Open(Config{InMemory: true}, nil)
	require.NoError(t, err)
	s.Close()

	var dbErr *db.Error
	assert.ErrorAs(t, s.Ping(context.Background()), &dbErr)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	row := db.DocumentRow{ID: "d1", Title: "Pets", Content: "cats are great pets", FileType: "text", CreatedAt: 42}
	require.NoError(t, s.InsertDocument(ctx, row))
	assert.ErrorIs(t, s.InsertDocument(ctx, row), db.ErrKeyExists)
	require.NoError(t, s.InsertDocument(ctx, db.DocumentRow{ID: "d2", Title: "Dogs", Content: "dogs", FileType: "text"}))

	n, err = s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := s.GetDocuments(ctx, []string{"d1", "missing"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row, rows[0])
}

func TestWriteIndex(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	df, err := s.CountPostings(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, 0, df)

	batch := []db.PostingRow{
		{Term: "cats", DocumentID: "d1", TFIDF: 0.17, TermFrequency: 0.25, Positions: []int{0}},
		{Term: "cat", DocumentID: "d1", TFIDF: 0.1, TermFrequency: 0.25, Positions: []int{1}},
	}
	require.NoError(t, s.WriteIndex(ctx, batch, db.EmbeddingRow{DocumentID: "d1", Vector: []float32{1, 0}}))

	df, err = s.CountPostings(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, 1, df, "prefix of one term must not count another")

	rows, err := s.PostingsForTerms(ctx, []string{"cats", "xyz"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, batch[0], rows[0])

	embs, err := s.ListEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, embs, 1)
	assert.Equal(t, []float32{1, 0}, embs[0].Vector)
}

func TestWriteIndex_DuplicatePostingsKept(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := db.PostingRow{Term: "cats", DocumentID: "d1", TFIDF: 0.2, TermFrequency: 0.5}
	emb := db.EmbeddingRow{DocumentID: "d1", Vector: []float32{1}}
	require.NoError(t, s.WriteIndex(ctx, []db.PostingRow{p}, emb))
	require.NoError(t, s.WriteIndex(ctx, []db.PostingRow{p}, emb))

	df, err := s.CountPostings(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, 2, df)

	rows, err := s.PostingsForTerms(ctx, []string{"cats"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWriteIndex_FailedEmbeddingDiscardsPostings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// badger rejects keys above 65000 bytes
	longID := strings.Repeat("x", 70000)
	err := s.WriteIndex(ctx,
		[]db.PostingRow{{Term: "cats", DocumentID: longID, TFIDF: 0.2, TermFrequency: 0.5}},
		db.EmbeddingRow{DocumentID: longID, Vector: []float32{1, 0}},
	)
	var dbErr *db.Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, db.OpWriteIndex, dbErr.Op)

	df, err := s.CountPostings(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, 0, df)

	rows, err := s.PostingsForTerms(ctx, []string{"cats"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteIndex_ReplacesEmbedding(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rows, err := s.ListEmbeddings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.WriteIndex(ctx, nil, db.EmbeddingRow{DocumentID: "d1", Vector: []float32{1, 0}}))
	require.NoError(t, s.WriteIndex(ctx, nil, db.EmbeddingRow{DocumentID: "d2", Vector: []float32{0, 1}}))
	require.NoError(t, s.WriteIndex(ctx, nil, db.EmbeddingRow{DocumentID: "d1", Vector: []float32{0.5, 0.5}}))

	rows, err = s.ListEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d1", rows[0].DocumentID)
	assert.Equal(t, []float32{0.5, 0.5}, rows[0].Vector)

	rows, err = s.ListEmbeddings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDecodeVector_BadLength(t *testing.T) {
	_, err := decodeVector([]byte{1, 2})
	assert.Error(t, err)
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, db.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

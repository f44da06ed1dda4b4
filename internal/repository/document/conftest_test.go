package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn func(ctx context.Context, row db.DocumentRow) error
	getFn    func(ctx context.Context, ids []string) ([]db.DocumentRow, error)
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockStore) InsertDocument(ctx context.Context, row db.DocumentRow) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, row)
	}
	return nil
}

func (m *mockStore) GetDocuments(ctx context.Context, ids []string) ([]db.DocumentRow, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockStore) CountDocuments(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("doc-1", "Pets", "cats are great pets", domdoc.FileTypeText, 1700000000000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

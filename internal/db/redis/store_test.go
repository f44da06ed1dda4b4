package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- documents.go tests ---

func TestInsertDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SADD", documentSetKey, "d1")).
			Return(mock.Result(mock.RedisInt64(1))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "HSET" && cmd[1] == documentKeyPrefix+"d1"
			})).
			Return(mock.Result(mock.RedisInt64(4))),
	)

	s := NewStoreForTest(c)
	err := s.InsertDocument(context.Background(), db.DocumentRow{
		ID: "d1", Title: "Pets", Content: "cats are great pets", FileType: "text", CreatedAt: 42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsertDocument_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SADD", documentSetKey, "d1")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	err := s.InsertDocument(context.Background(), db.DocumentRow{ID: "d1"})
	if !errors.Is(err, db.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestInsertDocument_HSetFailsReleasesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SADD", documentSetKey, "d1")).
			Return(mock.Result(mock.RedisInt64(1))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "HSET" })).
			Return(mock.ErrorResult(context.DeadlineExceeded)),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SREM", documentSetKey, "d1")).
			Return(mock.Result(mock.RedisInt64(1))),
	)

	s := NewStoreForTest(c)
	err := s.InsertDocument(context.Background(), db.DocumentRow{ID: "d1"})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestGetDocuments_SkipsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				fieldTitle:     mock.RedisString("Pets"),
				fieldContent:   mock.RedisString("cats are great pets"),
				fieldFileType:  mock.RedisString("text"),
				fieldCreatedAt: mock.RedisString("1700000000000"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	s := NewStoreForTest(c)
	rows, err := s.GetDocuments(context.Background(), []string{"d1", "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.ID != "d1" || r.Title != "Pets" || r.FileType != "text" || r.CreatedAt != 1700000000000 {
		t.Errorf("unexpected row: %+v", r)
	}
}

func TestGetDocuments_BadTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				fieldTitle:     mock.RedisString("t"),
				fieldCreatedAt: mock.RedisString("yesterday"),
			})),
		})

	s := NewStoreForTest(c)
	if _, err := s.GetDocuments(context.Background(), []string{"d1"}); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestGetDocuments_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	rows, err := s.GetDocuments(context.Background(), nil)
	if err != nil || rows != nil {
		t.Fatalf("expected nil, nil; got %v, %v", rows, err)
	}
}

func TestCountDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SCARD", documentSetKey)).
		Return(mock.Result(mock.RedisInt64(7)))

	s := NewStoreForTest(c)
	n, err := s.CountDocuments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
}

// --- postings.go tests ---

func TestCountPostings(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LLEN", postingKeyPrefix+"cats")).
		Return(mock.Result(mock.RedisInt64(3)))

	s := NewStoreForTest(c)
	n, err := s.CountPostings(context.Background(), "cats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("df = %d, want 3", n)
	}
}

func TestWriteIndex_MultiExec(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	vec := string(vectorToBytes([]float32{0.5, -1}))
	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "RPUSH" && cmd[1] == postingKeyPrefix+"cats"
			}),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "RPUSH" && cmd[1] == postingKeyPrefix+"pets"
			}),
			mock.Match("HSET", embeddingsKey, "d1", vec),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisArray(mock.RedisInt64(1), mock.RedisInt64(1), mock.RedisInt64(1))),
		})

	s := NewStoreForTest(c)
	err := s.WriteIndex(context.Background(), []db.PostingRow{
		{Term: "cats", DocumentID: "d1", TFIDF: 0.17, TermFrequency: 0.25, Positions: []int{0}},
		{Term: "pets", DocumentID: "d1", TFIDF: 0.17, TermFrequency: 0.25, Positions: []int{3}},
	}, db.EmbeddingRow{DocumentID: "d1", Vector: []float32{0.5, -1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteIndex_ExecAborted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.ErrorResult(errors.New("EXECABORT Transaction discarded")),
		})

	s := NewStoreForTest(c)
	err := s.WriteIndex(context.Background(),
		[]db.PostingRow{{Term: "cats", DocumentID: "d1"}},
		db.EmbeddingRow{DocumentID: "d1", Vector: []float32{1}},
	)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpWriteIndex {
		t.Fatalf("expected %s error, got %v", db.OpWriteIndex, err)
	}
}

func TestWriteIndex_NoPostings(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("MULTI"),
			mock.Match("HSET", embeddingsKey, "d1", string(vectorToBytes([]float32{1}))),
			mock.Match("EXEC"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisArray(mock.RedisInt64(1))),
		})

	s := NewStoreForTest(c)
	if err := s.WriteIndex(context.Background(), nil, db.EmbeddingRow{DocumentID: "d1", Vector: []float32{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostingsForTerms(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("LRANGE", postingKeyPrefix+"cats", "0", "-1"),
			mock.Match("LRANGE", postingKeyPrefix+"xyz", "0", "-1"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(
				mock.RedisString(`{"d":"d1","w":0.17,"tf":0.25,"p":[0]}`),
				mock.RedisString(`{"d":"d1","w":0.17,"tf":0.25,"p":[0]}`),
			)),
			mock.Result(mock.RedisArray()),
		})

	s := NewStoreForTest(c)
	rows, err := s.PostingsForTerms(context.Background(), []string{"cats", "xyz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// duplicates come back as stored
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Term != "cats" || rows[0].DocumentID != "d1" || rows[0].TFIDF != 0.17 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestPostingsForTerms_BadJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(mock.RedisString("not json"))),
		})

	s := NewStoreForTest(c)
	if _, err := s.PostingsForTerms(context.Background(), []string{"cats"}); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

// --- embeddings.go tests ---

func TestListEmbeddings_StopsAtLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSCAN" && cmd[1] == embeddingsKey && cmd[2] == "0"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(17),
			mock.RedisArray(
				mock.RedisString("d1"), mock.RedisString(string(vectorToBytes([]float32{1, 0})))),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSCAN" && cmd[2] == "17"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(
				mock.RedisString("d2"), mock.RedisString(string(vectorToBytes([]float32{0, 1}))),
				mock.RedisString("d3"), mock.RedisString(string(vectorToBytes([]float32{1, 1})))),
		)))

	s := NewStoreForTest(c)
	rows, err := s.ListEmbeddings(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].DocumentID != "d1" || rows[1].DocumentID != "d2" {
		t.Errorf("unexpected ids: %s, %s", rows[0].DocumentID, rows[1].DocumentID)
	}
	if rows[1].Vector[1] != 1 {
		t.Errorf("unexpected vector: %v", rows[1].Vector)
	}
}

func TestBytesToVector_BadLength(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error")
	}
}

// --- kv.go tests ---

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Key layout, all under domain.KeyPrefix:
//
//	doc:{id}          hash   title, content, file_type, created_at
//	docs              set    ids of every stored document
//	postings:{term}   list   JSON-encoded postings, one element per (term, document)
//	embeddings        hash   document id -> little-endian float32 vector
//	cache:*           string key-value entries
const (
	documentKeyPrefix = domain.KeyPrefix + "doc:"
	documentSetKey    = domain.KeyPrefix + "docs"
	postingKeyPrefix  = domain.KeyPrefix + "postings:"
	embeddingsKey     = domain.KeyPrefix + "embeddings"
)

// Store implements db.Store via rueidis. It works against Redis and Valkey.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// exec runs cmds inside MULTI/EXEC on one pipeline and reports the first failure.
func (s *Store) exec(ctx context.Context, op string, cmds ...rueidis.Completed) error {
	batch := make([]rueidis.Completed, 0, len(cmds)+2)
	batch = append(batch, s.b().Multi().Build())
	batch = append(batch, cmds...)
	batch = append(batch, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, batch...)
	if len(results) != len(batch) {
		return &db.Error{Op: op, Err: fmt.Errorf("exec: got %d replies for %d commands", len(results), len(batch))}
	}
	for _, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			return &db.Error{Op: op, Err: err}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("exec: %w", err)}
	}
	for _, r := range replies {
		if err := r.Error(); err != nil {
			return &db.Error{Op: op, Err: fmt.Errorf("exec: %w", err)}
		}
	}
	return nil
}

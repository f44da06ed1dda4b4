package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Key layout. Terms only contain [a-z0-9_], so '/' is a safe separator.
const (
	documentPrefix  = "doc/"
	postingPrefix   = "post/"
	embeddingPrefix = "emb/"
	kvPrefix        = "kv/"
	postingSeqKey   = "seq/postings"

	sequenceBandwidth = 100
)

var errClosed = errors.New("badger: database is closed")

// Config holds the on-disk location or the in-memory switch.
type Config struct {
	Path     string
	InMemory bool
}

// Store implements db.Store on an embedded Badger database.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

type zapBadgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapBadgerLogger)(nil)

func (l *zapBadgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *zapBadgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *zapBadgerLogger) Infof(msg string, args ...any)    { l.s.Infof(msg, args...) }
func (l *zapBadgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// Open opens the database, creating the directory if needed.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		info, err := os.Stat(cfg.Path)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
				return nil, fmt.Errorf("creating data dir: %w", err)
			}
		case err != nil:
			return nil, fmt.Errorf("stat data dir: %w", err)
		case !info.IsDir():
			return nil, fmt.Errorf("%s is not a directory", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &zapBadgerLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	seq, err := bdb.GetSequence([]byte(postingSeqKey), sequenceBandwidth)
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("posting sequence: %w", err)
	}
	return &Store{db: bdb, seq: seq}, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: errClosed}
	}
	return nil
}

// Close releases the sequence and closes the database.
func (s *Store) Close() {
	_ = s.seq.Release()
	_ = s.db.Close()
}

// WaitForReady returns immediately; an embedded database is ready once open.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// countPrefix counts keys under prefix without loading values.
func (s *Store) countPrefix(prefix []byte) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

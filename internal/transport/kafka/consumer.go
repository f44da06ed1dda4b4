// Package kafka feeds index events from a Kafka topic into the indexing
// service and publishes them for the CLI.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	"github.com/kailas-cloud/docsearch/internal/usecase/indexing"
)

// Retry backoff bounds for transient indexing failures.
const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// IndexEvent is the message value on the index topic. The key is the document id.
type IndexEvent struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	FileType   string `json:"fileType,omitempty"`
}

// Config holds the reader settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Indexer indexes a document under a caller-chosen id.
type Indexer interface {
	Index(ctx context.Context, in indexing.Input) (indexing.Result, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer indexes every event it reads and commits the offset afterwards.
// Malformed events are committed and skipped; other failures are retried
// with backoff until they succeed or the context ends.
type Consumer struct {
	reader  messageReader
	indexer Indexer
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewConsumer creates a consumer-group reader for cfg.Topic.
func NewConsumer(cfg Config, indexer Indexer, logger *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(r, indexer, logger.With(zap.String("component", "kafka-consumer"), zap.String("topic", cfg.Topic)))
}

func newConsumer(r messageReader, indexer Indexer, logger *zap.Logger) *Consumer {
	return &Consumer{reader: r, indexer: indexer, logger: logger, sleep: sleepCtx}
}

// Run consumes until ctx is canceled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Kafka consumer stopping", zap.Error(ctx.Err()))
				return nil
			}
			c.logger.Error("Fetch message failed", zap.Error(err))
			if err = c.sleep(ctx, initialBackoff); err != nil {
				return nil
			}
			continue
		}

		if err = c.handle(ctx, msg); err != nil {
			// only cancellation escapes handle
			return nil
		}
		if err = c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Commit failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// handle processes one message. It returns an error only when ctx ends.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	ctx, log := logpkg.With(logpkg.ContextWithLogger(ctx, c.logger),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	)

	in, err := decodeEvent(msg)
	if err != nil {
		metrics.IngestMessagesTotal.WithLabelValues("invalid").Inc()
		log.Warn("Skipping malformed index event", zap.Error(err))
		return nil
	}

	backoff := initialBackoff
	for {
		res, indexErr := c.indexer.Index(ctx, in)
		switch {
		case indexErr == nil:
			metrics.IngestMessagesTotal.WithLabelValues("indexed").Inc()
			log.Debug("Index event processed", zap.Int("terms", res.TermsIndexed))
			return nil
		case permanent(indexErr):
			metrics.IngestMessagesTotal.WithLabelValues("invalid").Inc()
			log.Warn("Skipping invalid index event", zap.Error(indexErr))
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.IngestMessagesTotal.WithLabelValues("retry").Inc()
		log.Warn("Index event failed, retrying", zap.Duration("backoff", backoff), zap.Error(indexErr))
		if err = c.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// permanent reports failures that a retry of the same event cannot fix.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrVectorDimMismatch) ||
		errors.Is(err, domain.ErrMalformedRecord)
}

func decodeEvent(msg kafka.Message) (indexing.Input, error) {
	var ev IndexEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return indexing.Input{}, fmt.Errorf("decode index event: %w", err)
	}
	if ev.DocumentID == "" {
		ev.DocumentID = string(msg.Key)
	}
	return indexing.Input{
		DocumentID: ev.DocumentID,
		Title:      ev.Title,
		Content:    ev.Content,
		FileType:   domdoc.FileType(ev.FileType),
		Source:     indexing.SourceKafka,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/skyvolt/fleetmon/model"
)

const (
	// DefaultESTimeout is used for standard queries and bulk operations
	DefaultESTimeout = 30 * time.Second
	// MaxRetryAttempts for connection errors like port exhaustion
	MaxRetryAttempts = 3
	// BaseRetryDelay is the base delay for exponential backoff
	BaseRetryDelay = 2 * time.Second
)

// isRetryableError checks if the error is a connection error that can be retried
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "cannot assign requested address") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "i/o timeout")
}

// TelemetryIndexName returns the daily index a document belongs in,
// e.g. fleetmon-telemetry-2026.08.31.
func TelemetryIndexName(day time.Time) string {
	return fmt.Sprintf("%s-%s", model.TelemetryIndex, day.Format("2006.01.02"))
}

type ArchiveRepo interface {
	BulkIndex(index string, docs []model.TelemetryDocument) error
}

type archiveRepo struct {
	elastic *elastic.Client
}

func NewArchiveRepo(elastic *elastic.Client) *archiveRepo {
	return &archiveRepo{
		elastic: elastic,
	}
}

func (r *archiveRepo) CreateIndexIfNotExist(index string) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultESTimeout)
	defer cancel()

	exist, err := r.elastic.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if !exist {
		result, err := r.elastic.CreateIndex(index).Do(ctx)
		if err != nil {
			return err
		}

		if !result.Acknowledged {
			return errors.New("elasticsearch did not acknowledge")
		}
	}

	return nil
}

func (r *archiveRepo) BulkIndex(index string, docs []model.TelemetryDocument) error {
	if len(docs) == 0 {
		return nil
	}

	if err := r.CreateIndexIfNotExist(index); err != nil {
		return err
	}

	bulk := r.elastic.Bulk()
	for _, doc := range docs {
		bulk.Add(elastic.NewBulkIndexRequest().Index(index).Doc(doc))
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultESTimeout)
		_, lastErr = bulk.Do(ctx)
		cancel()

		if lastErr == nil {
			return nil
		}

		// Only retry on connection errors like port exhaustion
		if !isRetryableError(lastErr) {
			return lastErr
		}

		// Exponential backoff: 2s, 4s, 8s
		if attempt < MaxRetryAttempts {
			time.Sleep(BaseRetryDelay * time.Duration(1<<attempt))
		}
	}

	return lastErr
}

package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/resilience"
)

const (
	selectPages = `SELECT uri, title, body FROM pages ORDER BY uri`
	selectLinks = `SELECT source_uri, target_uri FROM page_links ORDER BY source_uri, target_uri`
)

// PostgresSource reads pages(uri, title, body) and
// page_links(source_uri, target_uri) inside one read-only transaction,
// retrying transient failures.
type PostgresSource struct {
	client *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewPostgresSource(client *postgres.Client, retry resilience.RetryConfig) *PostgresSource {
	retry.Retryable = func(err error) bool {
		return !errors.Is(err, apperrors.ErrInvalidInput) &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return &PostgresSource{
		client: client,
		retry:  retry,
		logger: slog.Default().With("component", "corpus-postgres"),
	}
}

func (s *PostgresSource) Load(ctx context.Context) ([]page.Webpage, error) {
	var docs []Document
	err := resilience.Retry(ctx, "load-corpus", s.retry, func(ctx context.Context) error {
		return s.client.InReadTx(ctx, func(tx *sql.Tx) error {
			var err error
			docs, err = readDocuments(ctx, tx)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrCorpusUnavailable, err)
	}
	pages, err := Build(docs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("corpus loaded", "pages", len(pages))
	return pages, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readDocuments(ctx context.Context, q querier) ([]Document, error) {
	rows, err := q.QueryContext(ctx, selectPages)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	var docs []Document
	index := make(map[string]int)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.URI, &d.Title, &d.Body); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		index[d.URI] = len(docs)
		docs = append(docs, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}

	rows, err = q.QueryContext(ctx, selectLinks)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		// Links from pages that are not in the pages table have nowhere to go.
		if i, ok := index[source]; ok {
			docs[i].Links = append(docs[i].Links, target)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return docs, nil
}

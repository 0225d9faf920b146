package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// DefaultBoltBucket holds one JSON Document per key, keyed by URI.
const DefaultBoltBucket = "pages"

// BoltSource reads a corpus from a single bolt database file.
type BoltSource struct {
	Path   string
	Bucket string
	logger *slog.Logger
}

func NewBoltSource(path string) *BoltSource {
	return &BoltSource{
		Path:   path,
		Bucket: DefaultBoltBucket,
		logger: slog.Default().With("component", "corpus-bolt", "path", path),
	}
}

func (s *BoltSource) Load(ctx context.Context) ([]page.Webpage, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w: %w", s.Path, apperrors.ErrCorpusUnavailable, err)
	}
	db, err := bolt.Open(s.Path, 0o600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w: %w", s.Path, apperrors.ErrCorpusUnavailable, err)
	}
	defer db.Close()

	var docs []Document
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.Bucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found: %w", s.Bucket, apperrors.ErrCorpusUnavailable)
		}
		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decoding %q: %w: %w", k, apperrors.ErrInvalidInput, err)
			}
			if doc.URI == "" {
				doc.URI = string(k)
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", s.Path, err)
	}

	pages, err := Build(docs)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", s.Path, err)
	}
	s.logger.Info("corpus loaded", "pages", len(pages))
	return pages, nil
}

// WriteBolt replaces the contents of bucket in the database at path with
// docs, creating the file when needed.
func WriteBolt(path, bucket string, docs []Document) error {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucket)) != nil {
			if err := tx.DeleteBucket([]byte(bucket)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(bucket))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if doc.URI == "" {
				return fmt.Errorf("document without uri (title %q): %w", doc.Title, apperrors.ErrInvalidInput)
			}
			value, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(doc.URI), value); err != nil {
				return err
			}
		}
		return nil
	})
}

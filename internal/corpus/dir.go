package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// DirSource reads one Document per .yaml, .yml or .json file found under
// Root, recursively. Other files are skipped.
type DirSource struct {
	Root   string
	logger *slog.Logger
}

func NewDirSource(root string) *DirSource {
	return &DirSource{
		Root:   root,
		logger: slog.Default().With("component", "corpus-dir", "root", root),
	}
}

func (s *DirSource) Load(ctx context.Context) ([]page.Webpage, error) {
	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := Build(docs)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", s.Root, err)
	}
	s.logger.Info("corpus loaded", "pages", len(pages))
	return pages, nil
}

// Documents parses every document file under Root in lexical path order.
func (s *DirSource) Documents(ctx context.Context) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && isDocument(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus %s: %w: %w", s.Root, apperrors.ErrCorpusUnavailable, err)
	}
	// WalkDir is already lexical, sorting keeps the order explicit.
	slices.Sort(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("parsing %s: %w: %w", path, apperrors.ErrInvalidInput, err)
	}
	return doc, nil
}

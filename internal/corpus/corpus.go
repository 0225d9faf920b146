// Package corpus loads the pages the analyzers are built over. A corpus is
// self-contained: links to URIs outside it are kept on the page and later
// ignored by the PageRank graph.
package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/set"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// Source produces a full corpus snapshot on every Load.
type Source interface {
	Load(ctx context.Context) ([]page.Webpage, error)
}

// Document is the stored form of a page before tokenization.
type Document struct {
	URI   string   `yaml:"uri" json:"uri"`
	Title string   `yaml:"title" json:"title"`
	Body  string   `yaml:"body" json:"body"`
	Links []string `yaml:"links" json:"links"`
}

// Page tokenizes the title and body together into a Webpage.
func (d Document) Page() page.Webpage {
	links := make([]page.URI, len(d.Links))
	for i, l := range d.Links {
		links[i] = page.URI(l)
	}
	return page.New(page.URI(d.URI), tokenizer.Words(d.Title+" "+d.Body), links)
}

// Build converts docs into pages, rejecting blank and repeated URIs.
func Build(docs []Document) ([]page.Webpage, error) {
	seen := set.New[page.URI]()
	pages := make([]page.Webpage, 0, len(docs))
	for _, d := range docs {
		if d.URI == "" {
			return nil, fmt.Errorf("document without uri (title %q): %w", d.Title, apperrors.ErrInvalidInput)
		}
		if !seen.Add(page.URI(d.URI)) {
			return nil, fmt.Errorf("duplicate uri %q: %w", d.URI, apperrors.ErrInvalidInput)
		}
		pages = append(pages, d.Page())
	}
	return pages, nil
}

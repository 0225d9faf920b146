package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDocumentPage(t *testing.T) {
	p := Document{
		URI:   "https://a.example/",
		Title: "Ranking Pages",
		Body:  "the link graph",
		Links: []string{"https://b.example/"},
	}.Page()

	assert.Equal(t, page.URI("https://a.example/"), p.URI())
	assert.Equal(t, []string{"rank", "page", "link", "graph"}, p.Words())
	assert.Equal(t, []page.URI{"https://b.example/"}, p.Links())
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build([]Document{{URI: "a"}, {URI: "b"}, {URI: "a"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestBuildRejectsBlankURI(t *testing.T) {
	_, err := Build([]Document{{Title: "orphan"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDirSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
uri: a
title: Gophers
body: Gophers dig tunnels.
links: [b, https://outside.example/]
`)
	writeFile(t, dir, "nested/b.json", `{"uri":"b","body":"tunnels everywhere","links":["a"]}`)
	writeFile(t, dir, "c.yml", "uri: c\nbody: lonely page\n")
	writeFile(t, dir, "README.md", "ignored")

	pages, err := NewDirSource(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 3)

	byURI := make(map[page.URI]page.Webpage)
	for _, p := range pages {
		byURI[p.URI()] = p
	}
	assert.Equal(t, []string{"gopher", "gopher", "dig", "tunnel"}, byURI["a"].Words())
	assert.Equal(t, []page.URI{"b", "https://outside.example/"}, byURI["a"].Links())
	assert.Equal(t, []page.URI{"a"}, byURI["b"].Links())
	assert.Empty(t, byURI["c"].Links())
}

func TestDirSourceDuplicateURI(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.yaml", "uri: same\n")
	writeFile(t, dir, "two.yaml", "uri: same\n")

	_, err := NewDirSource(dir).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDirSourceMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", "{")
	_, err := NewDirSource(dir).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDirSourceMissingRoot(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "absent")).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)
}

func TestDirSourceEmpty(t *testing.T) {
	pages, err := NewDirSource(t.TempDir()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

// Package page defines the webpage abstraction the analyzers consume.
package page

// URI uniquely identifies a page within a corpus.
type URI string

// Webpage is an immutable, already tokenized document.
type Webpage interface {
	URI() URI
	Words() []string
	Links() []URI
}

// Page is the in-memory Webpage produced by the corpus loaders.
type Page struct {
	uri   URI
	words []string
	links []URI
}

func New(uri URI, words []string, links []URI) *Page {
	return &Page{uri: uri, words: words, links: links}
}

func (p *Page) URI() URI        { return p.uri }
func (p *Page) Words() []string { return p.words }
func (p *Page) Links() []URI    { return p.links }

package lsp

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"spelld/internal/language"
	"spelld/internal/source"
)

var (
	errUnknownDocument = errors.New("document is not open")
	errStaleVersion    = errors.New("version does not advance")
)

// document is an immutable snapshot of an open text document. gen changes
// on every mutation, including a config-driven refresh, and is the tag an
// analysis pass carries to decide whether its result may be published.
type document struct {
	uri        string
	path       string
	languageID string
	lang       *language.Language
	text       string
	version    int32
	gen        uint64
}

// documentStore is the session's only shared mutable state. Each method
// holds the lock just long enough to copy or replace a snapshot.
type documentStore struct {
	mu   sync.Mutex
	docs map[string]*document
	gen  uint64
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*document)}
}

func (d *documentStore) open(item textDocumentItem) document {
	uri := canonicalURI(item.URI)
	path := uriToPath(uri)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	doc := &document{
		uri:        uri,
		path:       path,
		languageID: item.LanguageID,
		lang:       language.Resolve(item.LanguageID, uri),
		text:       item.Text,
		version:    item.Version,
		gen:        d.gen,
	}
	d.docs[uri] = doc
	return *doc
}

func (d *documentStore) change(uri string, version int32, changes []textDocumentContentChangeEvent, enc source.Encoding) (document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.docs[uri]
	if !ok {
		return document{}, errUnknownDocument
	}
	if version <= cur.version {
		return *cur, fmt.Errorf("%w: %d after %d", errStaleVersion, version, cur.version)
	}
	d.gen++
	next := *cur
	next.text = applyChanges(cur.text, changes, enc)
	next.version = version
	next.gen = d.gen
	d.docs[uri] = &next
	return next, nil
}

// save replaces the text when the client includes it. The version is kept.
func (d *documentStore) save(uri string, text *string) (document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.docs[uri]
	if !ok {
		return document{}, errUnknownDocument
	}
	d.gen++
	next := *cur
	if text != nil {
		next.text = *text
	}
	next.gen = d.gen
	d.docs[uri] = &next
	return next, nil
}

func (d *documentStore) close(uri string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.docs[uri]
	delete(d.docs, uri)
	return ok
}

func (d *documentStore) get(uri string) (document, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.docs[uri]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

// current reports whether gen is still the live generation for uri.
func (d *documentStore) current(uri string, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.docs[uri]
	return ok && doc.gen == gen
}

// refresh bumps every document's generation and returns the new snapshots
// in URI order.
func (d *documentStore) refresh() []document {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]document, 0, len(d.docs))
	for uri, cur := range d.docs {
		d.gen++
		next := *cur
		next.gen = d.gen
		d.docs[uri] = &next
		out = append(out, next)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].uri < out[j].uri })
	return out
}

func (d *documentStore) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.docs)
}

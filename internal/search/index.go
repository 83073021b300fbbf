package search

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Entry is a published page handed to the index.
type Entry struct {
	Permalink   string
	Title       string
	Description string
	Locale      string
	HTML        string
}

// Document is the indexed form of a page.
type Document struct {
	Permalink   string `json:"permalink"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Text        string `json:"text"`
}

type index struct {
	Pages []Document `json:"pages"`
}

// Accumulator builds the search index for one run. It is safe for concurrent use.
type Accumulator struct {
	mu   sync.Mutex
	docs []Document
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// NewDocument extracts the visible text of entry.HTML.
func NewDocument(entry Entry) (Document, error) {
	text, err := ExtractText(entry.HTML)
	if err != nil {
		return Document{}, fmt.Errorf("search: extract text for %s: %w", entry.Permalink, err)
	}
	return Document{
		Permalink:   entry.Permalink,
		Title:       entry.Title,
		Description: entry.Description,
		Locale:      entry.Locale,
		Text:        text,
	}, nil
}

// Add records a prepared document.
func (a *Accumulator) Add(doc Document) {
	a.mu.Lock()
	a.docs = append(a.docs, doc)
	a.mu.Unlock()
}

// Append extracts the text of entry and records the page.
func (a *Accumulator) Append(entry Entry) error {
	doc, err := NewDocument(entry)
	if err != nil {
		return err
	}
	a.Add(doc)
	return nil
}

// Len reports the number of indexed pages.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.docs)
}

// Documents returns a copy of the indexed pages sorted by permalink then locale.
func (a *Accumulator) Documents() []Document {
	a.mu.Lock()
	docs := append([]Document(nil), a.docs...)
	a.mu.Unlock()

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Permalink != docs[j].Permalink {
			return docs[i].Permalink < docs[j].Permalink
		}
		return docs[i].Locale < docs[j].Locale
	})
	return docs
}

// Build serialises the index as {"pages":[...]}.
func (a *Accumulator) Build() ([]byte, error) {
	payload := index{Pages: a.Documents()}
	if payload.Pages == nil {
		payload.Pages = []Document{}
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("search: encode index: %w", err)
	}
	return out, nil
}

var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// ExtractText returns the visible body text of document with whitespace collapsed.
func ExtractText(document string) (string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
		case html.TextNode:
			words = append(words, strings.Fields(n.Data)...)
			return
		case html.CommentNode:
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return strings.Join(words, " "), nil
}

package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
)

// Namespace is the sitemap protocol schema.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc string `xml:"loc"`
}

// Accumulator collects published permalinks for one run. It is safe for concurrent use.
// Duplicates are kept; callers own collision handling.
type Accumulator struct {
	hostname string

	mu         sync.Mutex
	permalinks []string
}

// NewAccumulator returns an accumulator that qualifies locations with hostname. An empty
// hostname leaves permalinks unqualified.
func NewAccumulator(hostname string) *Accumulator {
	return &Accumulator{hostname: strings.Trim(strings.TrimSpace(hostname), "/")}
}

// AppendPermalink records path.
func (a *Accumulator) AppendPermalink(path string) {
	a.mu.Lock()
	a.permalinks = append(a.permalinks, path)
	a.mu.Unlock()
}

// Permalinks returns a copy of the accumulated paths in append order.
func (a *Accumulator) Permalinks() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.permalinks...)
}

// Len reports the number of accumulated paths.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.permalinks)
}

// Location qualifies path as https://{hostname}{path}, or returns path unchanged when no
// hostname is configured.
func (a *Accumulator) Location(path string) string {
	if a.hostname == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "https://" + a.hostname + path
}

// Build serialises the accumulated paths into a sitemap document, one <url> per path in
// append order.
func (a *Accumulator) Build() ([]byte, error) {
	paths := a.Permalinks()
	set := urlSet{
		XMLNS: Namespace,
		URLs:  make([]url, 0, len(paths)),
	}
	for _, path := range paths {
		set.URLs = append(set.URLs, url{Loc: a.Location(path)})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("sitemap: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

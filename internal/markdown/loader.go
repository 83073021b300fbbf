package markdown

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/spf13/afero"
)

const (
	homeKey     = "home"
	indexName   = "index"
	markdownExt = ".md"
)

// Document is one parsed markdown file, resolved to a page key, locale and permalink.
type Document struct {
	Path        string
	Key         string
	Locale      string
	Permalink   string
	FrontMatter FrontMatter
	Body        []byte
}

// LoaderConfig controls locale detection. A file whose first directory matches one of
// Locales belongs to that locale; files for DefaultLocale are stored as canonical content.
type LoaderConfig struct {
	Locales       []string
	DefaultLocale string
}

// Loader walks a filesystem and parses every markdown file it finds.
type Loader struct {
	fs            afero.Fs
	locales       []string
	defaultLocale string
}

// NewLoader builds a Loader rooted at fs.
func NewLoader(fs afero.Fs, cfg LoaderConfig) *Loader {
	locales := make([]string, 0, len(cfg.Locales))
	for _, code := range cfg.Locales {
		if code = strings.TrimSpace(code); code != "" {
			locales = append(locales, code)
		}
	}
	return &Loader{
		fs:            fs,
		locales:       locales,
		defaultLocale: strings.TrimSpace(cfg.DefaultLocale),
	}
}

// Load returns the documents below root ordered by path.
func (l *Loader) Load(root string) ([]*Document, error) {
	if root == "" {
		root = "."
	}
	var paths []string
	err := afero.Walk(l.fs, root, func(current string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(current), markdownExt) {
			return nil
		}
		paths = append(paths, current)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(paths)

	docs := make([]*Document, 0, len(paths))
	for _, current := range paths {
		rel, err := filepath.Rel(root, current)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", current, err)
		}
		source, err := afero.ReadFile(l.fs, current)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", current, err)
		}
		doc, err := l.parse(filepath.ToSlash(rel), source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) parse(rel string, source []byte) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	locale, local := l.detectLocale(rel)
	if override := strings.TrimSpace(meta.Locale); override != "" {
		locale = override
	}
	if locale == l.defaultLocale {
		locale = ""
	}

	permalink := strings.TrimSpace(meta.Permalink)
	if permalink == "" {
		if permalink, err = permalinkFor(local); err != nil {
			return nil, err
		}
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}

	key := strings.TrimSpace(meta.Slug)
	if key != "" {
		if key, err = normalize(key); err != nil {
			return nil, err
		}
	} else {
		key = keyFor(permalink)
	}

	return &Document{
		Path:        rel,
		Key:         key,
		Locale:      locale,
		Permalink:   permalink,
		FrontMatter: meta,
		Body:        body,
	}, nil
}

// detectLocale reports the locale encoded in the first path segment and the path
// relative to that locale directory.
func (l *Loader) detectLocale(rel string) (string, string) {
	first, rest, found := strings.Cut(rel, "/")
	if found && slices.Contains(l.locales, first) {
		return first, rest
	}
	return "", rel
}

// permalinkFor maps "index.md" to "/", "about.md" to "/about" and "blog/index.md"
// to "/blog".
func permalinkFor(rel string) (string, error) {
	trimmed := strings.TrimSuffix(rel, path.Ext(rel))
	segments := strings.Split(trimmed, "/")
	if segments[len(segments)-1] == indexName {
		segments = segments[:len(segments)-1]
	}
	normalized := make([]string, 0, len(segments))
	for _, segment := range segments {
		value, err := normalize(segment)
		if err != nil {
			return "", err
		}
		if value != "" {
			normalized = append(normalized, value)
		}
	}
	return "/" + strings.Join(normalized, "/"), nil
}

func keyFor(permalink string) string {
	trimmed := strings.Trim(permalink, "/")
	if trimmed == "" {
		return homeKey
	}
	return strings.ReplaceAll(trimmed, "/", "-")
}

func normalize(value string) (string, error) {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", value, err)
	}
	return normalized, nil
}

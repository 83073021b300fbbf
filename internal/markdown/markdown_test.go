package markdown_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sitepublish/internal/markdown"
	"github.com/goliatone/go-sitepublish/internal/store"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

func writeFile(t *testing.T, fs afero.Fs, name, body string) {
	t.Helper()
	if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func siteFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "content/index.md", "---\ntitle: Home\nposition: 1\n---\n# Welcome\n")
	writeFile(t, fs, "content/about.md", strings.Join([]string{
		"---",
		"title: About",
		"description: Who we are",
		"keywords: [team, company]",
		"position: 2",
		"json_ld:",
		"  \"@type\": AboutPage",
		"share:",
		"  title: Meet us",
		"  image: cover",
		"---",
		"About us",
		"",
	}, "\n"))
	writeFile(t, fs, "content/fr/about.md", "---\ntitle: A propos\n---\nBonjour\n")
	writeFile(t, fs, "content/blog/index.md", "Blog posts\n")
	writeFile(t, fs, "content/notes.txt", "ignored")
	return fs
}

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := markdown.ParseFrontMatter([]byte("---\ntitle: Hello\nkeywords: go, web\n---\nBody text\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Hello" {
		t.Fatalf("expected title Hello, got %q", meta.Title)
	}
	if got := meta.KeywordList(); got != "go, web" {
		t.Fatalf("unexpected keywords %q", got)
	}
	if strings.TrimSpace(string(body)) != "Body text" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	meta, body, err := markdown.ParseFrontMatter([]byte("Just text\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "" {
		t.Fatalf("expected empty title, got %q", meta.Title)
	}
	if strings.TrimSpace(string(body)) != "Just text" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLinkedDataEncodesMappings(t *testing.T) {
	meta, _, err := markdown.ParseFrontMatter([]byte("---\njson_ld:\n  \"@type\": WebPage\n---\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	raw, err := meta.LinkedData()
	if err != nil {
		t.Fatalf("linked data: %v", err)
	}
	if raw != `{"@type":"WebPage"}` {
		t.Fatalf("unexpected linked data %s", raw)
	}

	meta, _, err = markdown.ParseFrontMatter([]byte("---\njson_ld: '{\"@type\":\"Person\"}'\n---\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if raw, _ := meta.LinkedData(); raw != `{"@type":"Person"}` {
		t.Fatalf("expected string to pass through, got %s", raw)
	}
}

func TestLoaderResolvesKeysLocalesAndPermalinks(t *testing.T) {
	loader := markdown.NewLoader(siteFS(t), markdown.LoaderConfig{Locales: []string{"en", "fr"}, DefaultLocale: "en"})
	docs, err := loader.Load("content")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	type resolved struct{ path, key, locale, permalink string }
	want := []resolved{
		{"about.md", "about", "", "/about"},
		{"blog/index.md", "blog", "", "/blog"},
		{"fr/about.md", "about", "fr", "/about"},
		{"index.md", "home", "", "/"},
	}
	if len(docs) != len(want) {
		t.Fatalf("expected %d documents, got %d", len(want), len(docs))
	}
	for i, doc := range docs {
		got := resolved{doc.Path, doc.Key, doc.Locale, doc.Permalink}
		if got != want[i] {
			t.Fatalf("document %d: expected %+v, got %+v", i, want[i], got)
		}
	}
}

func TestLoaderFrontMatterOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "site/en/contact.md", "---\nslug: reach-us\npermalink: contact-us\n---\nHi\n")
	writeFile(t, fs, "site/legal.md", "---\nlocale: fr\n---\nMentions\n")

	loader := markdown.NewLoader(fs, markdown.LoaderConfig{Locales: []string{"en", "fr"}, DefaultLocale: "en"})
	docs, err := loader.Load("site")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	contact := docs[0]
	if contact.Key != "reach-us" || contact.Permalink != "/contact-us" || contact.Locale != "" {
		t.Fatalf("unexpected contact document %+v", contact)
	}
	legal := docs[1]
	if legal.Locale != "fr" || legal.Permalink != "/legal" {
		t.Fatalf("unexpected legal document %+v", legal)
	}
}

type recordingSink struct {
	pages []*store.Page
	fail  map[string]error
}

func (s *recordingSink) SavePage(_ context.Context, page *store.Page) error {
	if err := s.fail[page.Key]; err != nil {
		return err
	}
	copied := *page
	s.pages = append(s.pages, &copied)
	return nil
}

func TestImporterMapsDocumentsToPages(t *testing.T) {
	loader := markdown.NewLoader(siteFS(t), markdown.LoaderConfig{Locales: []string{"fr"}})
	sink := &recordingSink{}
	importer, err := markdown.NewImporter(sink, nil)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}

	result, err := markdown.ImportDir(context.Background(), loader, importer, "content")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Imported) != 4 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	about := sink.pages[0]
	if about.Key != "about" || about.Title != "About" || about.Description != "Who we are" {
		t.Fatalf("unexpected about page %+v", about)
	}
	if about.Keywords != "team, company" {
		t.Fatalf("unexpected keywords %q", about.Keywords)
	}
	if about.JSONLD != `{"@type":"AboutPage"}` {
		t.Fatalf("unexpected json-ld %q", about.JSONLD)
	}
	if about.ShareTitle != "Meet us" || about.ShareImageKey != "cover" {
		t.Fatalf("unexpected share fields %+v", about)
	}
	if about.Format != string(interfaces.ContentFormatMarkdown) || about.Position != 2 {
		t.Fatalf("unexpected format or position %+v", about)
	}
	if !strings.Contains(about.Body, "About us") {
		t.Fatalf("unexpected body %q", about.Body)
	}
}

func TestImporterContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	loader := markdown.NewLoader(siteFS(t), markdown.LoaderConfig{Locales: []string{"fr"}})
	sink := &recordingSink{fail: map[string]error{"blog": boom}}
	importer, err := markdown.NewImporter(sink, nil)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}

	result, err := markdown.ImportDir(context.Background(), loader, importer, "content")
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
	if len(result.Imported) != 3 {
		t.Fatalf("expected 3 imported documents, got %d", len(result.Imported))
	}
	if _, ok := result.Failed["blog/index.md"]; !ok {
		t.Fatalf("expected blog/index.md failure, got %+v", result.Failed)
	}
}

func TestNewImporterRequiresSink(t *testing.T) {
	if _, err := markdown.NewImporter(nil, nil); !errors.Is(err, markdown.ErrPageSinkRequired) {
		t.Fatalf("expected ErrPageSinkRequired, got %v", err)
	}
}

func TestImportIntoStore(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pages, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	loader := markdown.NewLoader(siteFS(t), markdown.LoaderConfig{Locales: []string{"fr"}})
	importer, err := markdown.NewImporter(pages, nil)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	if _, err := markdown.ImportDir(ctx, loader, importer, "content"); err != nil {
		t.Fatalf("import: %v", err)
	}

	records, err := pages.Search(ctx, "*", "fr")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	titles := make([]string, 0, len(records))
	for _, record := range records {
		titles = append(titles, record.Title)
	}
	if got := strings.Join(titles, ","); got != "A propos,,Home" {
		t.Fatalf("unexpected titles %q", got)
	}

	content, err := pages.GetPageContent(ctx, "about", "fr")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if content.Format != interfaces.ContentFormatMarkdown || !strings.Contains(content.Body, "Bonjour") {
		t.Fatalf("unexpected content %+v", content)
	}
}

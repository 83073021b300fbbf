package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitepublish/internal/adapters/storage"
)

func TestCleanPath(t *testing.T) {
	valid := map[string]string{
		"/index.html":            "/index.html",
		"about/index.html":       "/about/index.html",
		"/a/../b/styles.css":     "/b/styles.css",
		"/../../etc/passwd":      "/etc/passwd",
		" /sitemap.xml ":         "/sitemap.xml",
		"/fr/about/./index.html": "/fr/about/index.html",
	}
	for in, want := range valid {
		got, err := cleanPath(in)
		if err != nil || got != want {
			t.Fatalf("cleanPath(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "/", "/about/", "  "} {
		if _, err := cleanPath(in); !errors.Is(err, errInvalidPath) {
			t.Fatalf("cleanPath(%q) expected errInvalidPath, got %v", in, err)
		}
	}
}

func TestFSStoreWritesNestedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFSStore(fs, "/site")
	ctx := context.Background()

	if err := store.UploadBlob(ctx, "/about/index.html", []byte("<p>about</p>"), "text/html"); err != nil {
		t.Fatalf("UploadBlob: %v", err)
	}
	if err := store.UploadBlob(ctx, "/about/index.html", []byte("<p>v2</p>"), "text/html"); err != nil {
		t.Fatalf("UploadBlob overwrite: %v", err)
	}

	data, err := afero.ReadFile(fs, "/site/about/index.html")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "<p>v2</p>" {
		t.Fatalf("unexpected content %q", data)
	}

	got, err := store.ReadBlob(ctx, "about/index.html")
	if err != nil || string(got) != "<p>v2</p>" {
		t.Fatalf("ReadBlob = %q, %v", got, err)
	}
	if _, err := store.ReadBlob(ctx, "/missing.html"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewFSStore(afero.NewMemMapFs(), "").UploadBlob(ctx, "/a.txt", nil, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDirStoreWritesToDisk(t *testing.T) {
	dir := t.TempDir()
	if err := NewDirStore(dir).UploadBlob(context.Background(), "/styles/styles.css", []byte("body{}"), "text/css"); err != nil {
		t.Fatalf("UploadBlob: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "styles", "styles.css"))
	if err != nil || string(data) != "body{}" {
		t.Fatalf("read = %q, %v", data, err)
	}
}

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLStore(storage.NewSQLAdapter(db), "")
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return store
}

func TestSQLStoreUpsertsBlobs(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	if err := store.UploadBlob(ctx, "/sitemap.xml", []byte("<urlset/>"), "application/xml"); err != nil {
		t.Fatalf("UploadBlob: %v", err)
	}
	if err := store.UploadBlob(ctx, "/index.html", []byte("<p>v1</p>"), "text/html"); err != nil {
		t.Fatalf("UploadBlob: %v", err)
	}
	if err := store.UploadBlob(ctx, "index.html", []byte("<p>v2</p>"), "text/html; charset=utf-8"); err != nil {
		t.Fatalf("UploadBlob overwrite: %v", err)
	}

	blob, err := store.ReadBlob(ctx, "/index.html")
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "<p>v2</p>" || blob.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("unexpected blob %+v", blob)
	}

	paths, err := store.Paths(ctx)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/index.html" || paths[1] != "/sitemap.xml" {
		t.Fatalf("unexpected paths %v", paths)
	}

	if _, err := store.ReadBlob(ctx, "/nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewSQLStoreValidatesTable(t *testing.T) {
	if _, err := NewSQLStore(nil, ""); err == nil {
		t.Fatal("expected provider error")
	}
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := NewSQLStore(storage.NewSQLAdapter(db), "blobs; DROP TABLE x"); err == nil {
		t.Fatal("expected invalid table name error")
	}
}

package di_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitepublish/internal/blobstore"
	markdowncmd "github.com/goliatone/go-sitepublish/internal/commands/markdown"
	publishcmd "github.com/goliatone/go-sitepublish/internal/commands/publish"
	"github.com/goliatone/go-sitepublish/internal/di"
	"github.com/goliatone/go-sitepublish/internal/logging/console"
	"github.com/goliatone/go-sitepublish/internal/publish"
	"github.com/goliatone/go-sitepublish/internal/runtimeconfig"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared&_fk=1"
	return cfg
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, fs afero.Fs) *di.Container {
	t.Helper()
	c, err := di.NewContainer(context.Background(), cfg,
		di.WithFS(fs),
		di.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func seedSite(t *testing.T, c *di.Container, fs afero.Fs) {
	t.Helper()
	ctx := context.Background()
	if err := c.Store().SaveLocale(ctx, interfaces.Locale{Code: "en", IsDefault: true}, 0); err != nil {
		t.Fatalf("save locale: %v", err)
	}
	if err := c.Store().SaveSiteSettings(ctx, interfaces.SiteSettings{Hostname: "example.com", Title: "Example"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	files := map[string]string{
		"content/index.md": "---\ntitle: Home\n---\n# Welcome\n",
		"content/about.md": "---\ntitle: About\n---\nAbout **us**\n",
	}
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := c.ImportHandler().Execute(ctx, markdowncmd.ImportDirectoryCommand{Directory: "content"}); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestContainerPublishesImportedMarkdownToFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newContainer(t, testConfig(t), fs)
	seedSite(t, c, fs)

	var result *publish.Result
	err := c.PublishHandler().Execute(context.Background(), publishcmd.PublishSiteCommand{
		FailOnPageErrors: true,
		ResultCallback:   func(r *publish.Result) { result = r },
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result == nil || result.Published != 2 {
		t.Fatalf("expected two published pages, got %+v", result)
	}

	about, err := afero.ReadFile(fs, "dist/about/index.html")
	if err != nil {
		t.Fatalf("read about page: %v", err)
	}
	if !strings.Contains(string(about), "<strong>us</strong>") {
		t.Fatalf("expected rendered markdown in about page, got %s", about)
	}
	for _, name := range []string{"dist/index.html", "dist/sitemap.xml", "dist/search-index.json", "dist/styles/styles.css"} {
		if ok, _ := afero.Exists(fs, name); !ok {
			t.Fatalf("expected %s to be written", name)
		}
	}
	sitemap, _ := afero.ReadFile(fs, "dist/sitemap.xml")
	if !strings.Contains(string(sitemap), "<loc>https://example.com/about</loc>") {
		t.Fatalf("unexpected sitemap %s", sitemap)
	}
}

func TestContainerPublishesToSQLTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testConfig(t)
	cfg.Output = runtimeconfig.OutputConfig{Provider: runtimeconfig.OutputProviderSQL}
	c := newContainer(t, cfg, fs)
	seedSite(t, c, fs)

	result := c.Publisher().Publish(context.Background())
	if result.Err != nil || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	sqlStore, ok := c.Blobs().(*blobstore.SQLStore)
	if !ok {
		t.Fatalf("expected sql blob store, got %T", c.Blobs())
	}
	blob, err := sqlStore.ReadBlob(context.Background(), "/index.html")
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if blob.ContentType != "text/html" || !strings.Contains(string(blob.Data), "Welcome") {
		t.Fatalf("unexpected blob %+v", blob)
	}
	if ok, _ := afero.Exists(fs, "dist/index.html"); ok {
		t.Fatal("expected nothing on the filesystem for sql output")
	}
}

func TestContainerMetricsHandler(t *testing.T) {
	cfg := testConfig(t)
	if c := newContainer(t, cfg, afero.NewMemMapFs()); c.MetricsHandler() != nil {
		t.Fatal("expected no metrics handler when metrics are disabled")
	}

	cfg.Metrics.Enabled = true
	cfg.Database.DSN = "file:" + t.Name() + "-metrics?mode=memory&cache=shared&_fk=1"
	if c := newContainer(t, cfg, afero.NewMemMapFs()); c.MetricsHandler() == nil {
		t.Fatal("expected metrics handler when metrics are enabled")
	}
}

func TestNewContainerValidatesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Provider = "s3"
	if _, err := di.NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

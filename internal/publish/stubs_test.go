package publish

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

type localeStub struct {
	locales       []interfaces.Locale
	defaultLocale string
	err           error
}

func (s localeStub) GetLocales(context.Context) ([]interfaces.Locale, error) {
	return s.locales, s.err
}

func (s localeStub) GetDefaultLocale(context.Context) (string, error) {
	return s.defaultLocale, nil
}

type settingsStub struct {
	settings interfaces.SiteSettings
	err      error
}

func (s settingsStub) GetSiteSettings(context.Context) (interfaces.SiteSettings, error) {
	return s.settings, s.err
}

type pageStub struct {
	// pages by content locale ("" for the default locale)
	pages       map[string][]interfaces.PageRecord
	contentErrs map[string]error

	mu          sync.Mutex
	searches    []string
	contentKeys []string
}

func (s *pageStub) Search(_ context.Context, pattern, locale string) ([]interfaces.PageRecord, error) {
	s.mu.Lock()
	s.searches = append(s.searches, pattern+"|"+locale)
	s.mu.Unlock()
	return s.pages[locale], nil
}

func (s *pageStub) GetPageContent(_ context.Context, key, locale string) (*interfaces.PageContent, error) {
	s.mu.Lock()
	s.contentKeys = append(s.contentKeys, key+"|"+locale)
	s.mu.Unlock()
	if err := s.contentErrs[key]; err != nil {
		return nil, err
	}
	body := "<p>" + key + "</p>"
	if locale != "" {
		body = "<p>" + key + " (" + locale + ")</p>"
	}
	return &interfaces.PageContent{Format: interfaces.ContentFormatHTML, Body: body}, nil
}

type mediaStub struct {
	assets map[string]*interfaces.MediaAsset
	err    error
}

func (s mediaStub) GetMediaByKey(_ context.Context, key string) (*interfaces.MediaAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assets[key], nil
}

type upload struct {
	data        []byte
	contentType string
}

type memoryStorage struct {
	mu      sync.Mutex
	blobs   map[string]upload
	failFor map[string]error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{blobs: map[string]upload{}, failFor: map[string]error{}}
}

func (m *memoryStorage) UploadBlob(_ context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[path]; err != nil {
		return err
	}
	m.blobs[path] = upload{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (m *memoryStorage) get(path string) (upload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[path]
	return blob, ok
}

func (m *memoryStorage) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.blobs))
	for path := range m.blobs {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// recordingRenderer emits a tiny document and remembers every context it saw.
type recordingRenderer struct {
	failTitles map[string]error

	mu       sync.Mutex
	contexts map[string]*interfaces.RenderContext
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{contexts: map[string]*interfaces.RenderContext{}}
}

func (r *recordingRenderer) RenderHTML(_ context.Context, page *interfaces.RenderContext) (string, error) {
	r.mu.Lock()
	r.contexts[page.Permalink] = page
	r.mu.Unlock()
	for prefix, err := range r.failTitles {
		if strings.HasPrefix(page.Title, prefix) {
			return "", err
		}
	}
	if page.Bindings.Styles != nil {
		page.Bindings.Styles.AddRule("page", interfaces.StyleRule{
			Selector:     "main",
			Declarations: map[string]string{"margin": "0"},
		})
	}
	body := ""
	if page.Bindings.Content != nil {
		body = page.Bindings.Content.Body
	}
	return fmt.Sprintf("<html>\n  <head><title>%s</title></head>\n  <body>%s</body>\n</html>", page.Title, body), nil
}

func (r *recordingRenderer) context(permalink string) *interfaces.RenderContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contexts[permalink]
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(map[string]any) interfaces.Logger { return l }

func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, entry := range *l.entries {
		if entry.level == level && entry.msg == msg {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")

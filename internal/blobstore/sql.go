package blobstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "published_blobs"

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blobstore: blob not found")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore keeps blobs in a single table behind an interfaces.StorageProvider.
type SQLStore struct {
	provider interfaces.StorageProvider
	table    string
	now      func() time.Time
}

var _ interfaces.BlobStorage = (*SQLStore)(nil)

// NewSQLStore returns a store writing to table (DefaultTable when empty).
func NewSQLStore(provider interfaces.StorageProvider, table string) (*SQLStore, error) {
	if provider == nil {
		return nil, errors.New("blobstore: storage provider is required")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("blobstore: invalid table name %q", table)
	}
	return &SQLStore{provider: provider, table: table, now: time.Now}, nil
}

// EnsureSchema creates the blob table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	path TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	data BLOB NOT NULL,
	size INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`, s.table)
	if _, err := s.provider.Exec(ctx, query); err != nil {
		return fmt.Errorf("blobstore: create table %s: %w", s.table, err)
	}
	return nil
}

// UploadBlob inserts or replaces the blob at p.
func (s *SQLStore) UploadBlob(ctx context.Context, p string, data []byte, contentType string) error {
	cleaned, err := cleanPath(p)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	query := fmt.Sprintf(`INSERT INTO %s (path, content_type, data, size, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	content_type = excluded.content_type,
	data = excluded.data,
	size = excluded.size,
	updated_at = excluded.updated_at`, s.table)
	if _, err := s.provider.Exec(ctx, query, cleaned, contentType, data, len(data), s.now().UTC()); err != nil {
		return fmt.Errorf("blobstore: upload %s: %w", cleaned, err)
	}
	return nil
}

// Blob is a stored artifact.
type Blob struct {
	Path        string
	ContentType string
	Data        []byte
}

// ReadBlob loads the blob at p.
func (s *SQLStore) ReadBlob(ctx context.Context, p string) (*Blob, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	rows, err := s.provider.Query(ctx, fmt.Sprintf(`SELECT path, content_type, data FROM %s WHERE path = ?`, s.table), cleaned)
	if err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", cleaned, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("blobstore: %s: %w", cleaned, ErrNotFound)
	}
	blob := &Blob{}
	if err := rows.Scan(&blob.Path, &blob.ContentType, &blob.Data); err != nil {
		return nil, fmt.Errorf("blobstore: scan %s: %w", cleaned, err)
	}
	return blob, nil
}

// Paths lists every stored path in lexical order.
func (s *SQLStore) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.provider.Query(ctx, fmt.Sprintf(`SELECT path FROM %s ORDER BY path`, s.table))
	if err != nil {
		return nil, fmt.Errorf("blobstore: list paths: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

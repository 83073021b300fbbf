package blobstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// FSStore writes blobs as files on an afero filesystem.
type FSStore struct {
	fs afero.Fs
}

var _ interfaces.BlobStorage = (*FSStore)(nil)

// NewFSStore roots the store at dir on fs. An empty dir writes at the filesystem root.
func NewFSStore(fs afero.Fs, dir string) *FSStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		fs = afero.NewBasePathFs(fs, dir)
	}
	return &FSStore{fs: fs}
}

// NewDirStore writes into dir on the host filesystem.
func NewDirStore(dir string) *FSStore {
	return NewFSStore(afero.NewOsFs(), dir)
}

// UploadBlob writes data at p, creating parent directories. The content type is implied by
// the file extension and not stored.
func (s *FSStore) UploadBlob(ctx context.Context, p string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(cleaned), 0o755); err != nil {
		return fmt.Errorf("blobstore: create directory for %s: %w", cleaned, err)
	}
	if err := afero.WriteFile(s.fs, cleaned, data, 0o644); err != nil {
		return fmt.Errorf("blobstore: write %s: %w", cleaned, err)
	}
	return nil
}

// ReadBlob returns the stored bytes of p.
func (s *FSStore) ReadBlob(_ context.Context, p string) ([]byte, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blobstore: %s: %w", cleaned, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the content tables and indexes when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Locale)(nil),
		(*SiteSettings)(nil),
		(*Page)(nil),
		(*Media)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table %T: %w", model, err)
		}
	}
	if _, err := db.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS idx_pages_key_locale ON pages(page_key, locale)"); err != nil {
		return fmt.Errorf("store: create index idx_pages_key_locale: %w", err)
	}
	return nil
}

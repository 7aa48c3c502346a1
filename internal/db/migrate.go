package db

import (
	"context"
	_ "embed"
	"fmt"
)

var (
	//go:embed schema.sql
	schema string

	//go:embed trigram.sql
	trigramSchema string
)

// Migrate создаёт таблицы scraped_articles, predictions и headline, если их ещё нет.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// MigrateTrigram включает pg_trgm и индекс по заголовкам. Нужен только для поиска похожих заголовков в БД.
func (db *Database) MigrateTrigram(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, trigramSchema); err != nil {
		return fmt.Errorf("apply trigram schema: %w", err)
	}
	return nil
}

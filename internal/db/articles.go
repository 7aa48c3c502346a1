package db

import (
	"context"
	"fmt"
)

// GetOrCreateArticle возвращает id статьи по url, создавая её при отсутствии.
// Конфликт по url разрешается в том же запросе: существующие title и content не перезаписываются,
// поэтому два одновременных первых сохранения одного url получают один и тот же id.
// created = true, если строка была вставлена этим вызовом.
func (db *Database) GetOrCreateArticle(ctx context.Context, url, title, content string) (int64, bool, error) {
	var (
		id      int64
		created bool
	)
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO scraped_articles (url, title, content, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
        RETURNING id, (xmax = 0) AS inserted
    `, url, title, content).Scan(&id, &created)
	if err != nil {
		return 0, false, fmt.Errorf("save article: %w", err)
	}
	return id, created, nil
}

// ArticleExists сообщает, сохранена ли уже статья с таким url.
func (db *Database) ArticleExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM scraped_articles WHERE url = $1)
    `, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return exists, nil
}

package similarity

import (
	"context"
	"fmt"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/db"
)

// Trigram ищет похожие заголовки среди сохранённых статей через pg_trgm.
type Trigram struct {
	pool    db.Pool
	limit   int
	timeout time.Duration
}

func NewTrigram(pool db.Pool, cfg config.SimilarityConfig) *Trigram {
	return &Trigram{pool: pool, limit: cfg.Limit, timeout: cfg.Timeout()}
}

func (t *Trigram) FindSimilar(ctx context.Context, title string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rows, err := t.pool.Query(ctx, `
        SELECT title
        FROM scraped_articles
        WHERE title % $1 AND title <> $1
        ORDER BY similarity(title, $1) DESC
        LIMIT $2
    `, title, t.limit)
	if err != nil {
		return nil, fmt.Errorf("query similar titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan similar title: %w", err)
		}
		titles = append(titles, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar titles: %w", err)
	}
	return titles, nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"news_verifier/internal/models"
)

// AppendHeadline добавляет запись в журнал заголовков. Повторный url тоже добавляется.
func (db *Database) AppendHeadline(ctx context.Context, pressName, url string) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO headline (press_name, url, created_at)
        VALUES ($1, $2, NOW())
    `, pressName, url)
	if err != nil {
		return fmt.Errorf("append headline: %w", err)
	}
	return nil
}

// RecentHeadlines возвращает заголовки за последние window вместе с предсказаниями, новые первыми.
// Заголовки без сохранённой статьи или без предсказания в выборку не попадают.
func (db *Database) RecentHeadlines(ctx context.Context, window time.Duration) ([]models.RecentHeadline, error) {
	since := time.Now().Add(-window)

	rows, err := db.Pool.Query(ctx, `
        SELECT h.press_name, h.url, sa.title, p.real_news_probability, p.fake_news_probability
        FROM headline h
        JOIN scraped_articles sa ON h.url = sa.url
        JOIN predictions p ON sa.id = p.article_id
        WHERE h.created_at >= $1
        ORDER BY h.created_at DESC
    `, since)
	if err != nil {
		return nil, fmt.Errorf("query recent headlines: %w", err)
	}
	defer rows.Close()

	headlines := []models.RecentHeadline{}
	for rows.Next() {
		var h models.RecentHeadline
		if err := rows.Scan(&h.PressName, &h.URL, &h.Title, &h.RealProbability, &h.FakeProbability); err != nil {
			return nil, fmt.Errorf("scan recent headline: %w", err)
		}
		headlines = append(headlines, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent headlines: %w", err)
	}
	return headlines, nil
}

package db

import (
	"context"
	"errors"
	"fmt"

	"news_verifier/internal/models"

	"github.com/jackc/pgx/v5"
)

// LookupPrediction возвращает предсказание вместе с заголовком статьи по её url.
// Если предсказания нет, возвращает nil без ошибки.
func (db *Database) LookupPrediction(ctx context.Context, url string) (*models.Prediction, error) {
	var p models.Prediction
	err := db.Pool.QueryRow(ctx, `
        SELECT p.real_news_probability, p.fake_news_probability, sa.title
        FROM predictions p
        JOIN scraped_articles sa ON p.article_id = sa.id
        WHERE sa.url = $1
    `, url).Scan(&p.RealProbability, &p.FakeProbability, &p.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup prediction: %w", err)
	}
	return &p, nil
}

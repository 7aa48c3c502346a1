package main

import (
	"context"
	"fmt"

	"news_verifier/internal/cache"
	"news_verifier/internal/classifier"
	"news_verifier/internal/config"
	"news_verifier/internal/db"
	"news_verifier/internal/fetcher"
	"news_verifier/internal/headlines"
	"news_verifier/internal/logger"
	"news_verifier/internal/pipeline"
	"news_verifier/internal/similarity"

	"github.com/redis/go-redis/v9"
)

// app связывает адаптеры с конвейером. close освобождает пул БД и клиент Redis.
type app struct {
	database *db.Database
	redis    *redis.Client
	pipeline *pipeline.Pipeline
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Component("app")

	database, err := db.NewDB(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("db connection: %w", err)
	}
	a := &app{database: database}

	if cfg.Database.Migrate {
		if err := migrate(ctx, database, cfg); err != nil {
			a.close()
			return nil, err
		}
	}

	var predictions pipeline.PredictionCache = database
	if cfg.Redis.Address != "" {
		client, err := cache.NewClient(cfg.Redis)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		a.redis = client
		predictions = cache.NewPredictionCache(database, client, cfg.Redis.TTL())
		log.WithField("address", cfg.Redis.Address).Info("Prediction cache enabled")
	}

	a.pipeline = pipeline.New(pipeline.Deps{
		Cache:      predictions,
		Articles:   database,
		Headlines:  database,
		Scraper:    fetcher.NewScraper(cfg.Scraper),
		Classifier: classifier.NewInvoker(cfg.Classifier),
		Similarity: newSimilarity(database, cfg.Similarity),
		Discoverer: newDiscoverer(cfg),
	}, pipeline.Options{SimilarityFailOpen: cfg.Similarity.FailOpen})

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Log.Warnf("Failed to close redis client: %v", err)
		}
	}
	a.database.Close()
}

func newSimilarity(database *db.Database, cfg config.SimilarityConfig) pipeline.SimilarityFinder {
	if cfg.Mode == config.SimilarityModeTrigram {
		return similarity.NewTrigram(database.Pool, cfg)
	}
	return similarity.NewRemote(cfg)
}

func newDiscoverer(cfg *config.Config) pipeline.Discoverer {
	if cfg.Headlines.Mode == config.HeadlinesModeRanking {
		return headlines.NewRankingDiscoverer(cfg.Headlines, cfg.Scraper.UserAgent)
	}
	return headlines.NewProcessDiscoverer(cfg.Headlines)
}

func migrate(ctx context.Context, database *db.Database, cfg *config.Config) error {
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	if cfg.Similarity.Mode == config.SimilarityModeTrigram {
		if err := database.MigrateTrigram(ctx); err != nil {
			return fmt.Errorf("migrate trigram index: %w", err)
		}
	}
	return nil
}

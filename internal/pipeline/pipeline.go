// Package pipeline проверяет статьи: кэш предсказаний, скрапинг, сохранение, классификация
// и пакетная обработка свежих заголовков.
package pipeline

import (
	"context"
	"sync/atomic"

	"news_verifier/internal/logger"
	"news_verifier/internal/metrics"
	"news_verifier/internal/models"
)

type PredictionCache interface {
	LookupPrediction(ctx context.Context, url string) (*models.Prediction, error)
}

type ArticleStore interface {
	GetOrCreateArticle(ctx context.Context, url, title, content string) (int64, bool, error)
	ArticleExists(ctx context.Context, url string) (bool, error)
}

type HeadlineLog interface {
	AppendHeadline(ctx context.Context, pressName, url string) error
}

type Scraper interface {
	Fetch(ctx context.Context, url string) (*models.ScrapedArticle, error)
}

type Classifier interface {
	Classify(ctx context.Context, url string) error
}

type SimilarityFinder interface {
	FindSimilar(ctx context.Context, title string) ([]string, error)
}

type Discoverer interface {
	Discover(ctx context.Context) ([]models.HeadlineEntry, error)
}

// Deps - внешние компоненты конвейера.
type Deps struct {
	Cache      PredictionCache
	Articles   ArticleStore
	Headlines  HeadlineLog
	Scraper    Scraper
	Classifier Classifier
	Similarity SimilarityFinder
	Discoverer Discoverer
}

type Options struct {
	// SimilarityFailOpen: ошибка поиска похожих заголовков не прерывает запрос, sim будет пустым.
	SimilarityFailOpen bool
}

// Pipeline не держит блокировок по URL: два одновременных запроса одного нового URL оба
// скрапят и классифицируют, а дубль статьи отсекает хранилище.
type Pipeline struct {
	deps      Deps
	opts      Options
	batchBusy atomic.Bool
}

func New(deps Deps, opts Options) *Pipeline {
	return &Pipeline{deps: deps, opts: opts}
}

// Verify возвращает предсказание для url, при необходимости скрапя, сохраняя и классифицируя статью.
// Состояния: CACHED → SCRAPING → STORING → CLASSIFYING → DONE, любая ошибка завершает вызов; повторов нет.
func (p *Pipeline) Verify(ctx context.Context, url string) (*models.Verdict, error) {
	verdict, err := p.verify(ctx, url)
	if err != nil {
		metrics.Requests.WithLabelValues(string(KindOf(err))).Inc()
		return nil, err
	}
	return verdict, nil
}

func (p *Pipeline) verify(ctx context.Context, url string) (*models.Verdict, error) {
	log := logger.FromContext(ctx, logger.Component("pipeline")).WithField("url", url)

	log.Debug("State CACHED")
	cached, err := p.deps.Cache.LookupPrediction(ctx, url)
	if err != nil {
		return nil, newError(StorageFailed, url, err)
	}
	if cached != nil {
		log.Debug("Found existing prediction")
		metrics.CacheHits.Inc()
		sim, err := p.similar(ctx, log, url, cached.Title)
		if err != nil {
			return nil, err
		}
		metrics.Requests.WithLabelValues("cached").Inc()
		return verdictFrom(cached, sim), nil
	}

	log.Debug("State SCRAPING")
	article, err := p.deps.Scraper.Fetch(ctx, url)
	if err != nil {
		return nil, newError(ScrapeFailed, url, err)
	}

	sim, err := p.similar(ctx, log, url, article.Title)
	if err != nil {
		return nil, err
	}

	log.Debug("State STORING")
	id, created, err := p.deps.Articles.GetOrCreateArticle(ctx, url, article.Title, article.Content)
	if err != nil {
		return nil, newError(StorageFailed, url, err)
	}
	log.WithFields(logger.Fields{"article_id": id, "created": created}).Debug("Article stored")

	log.Debug("State CLASSIFYING")
	if err := p.deps.Classifier.Classify(ctx, url); err != nil {
		return nil, newError(ClassificationFailed, url, err)
	}

	prediction, err := p.deps.Cache.LookupPrediction(ctx, url)
	if err != nil {
		return nil, newError(StorageFailed, url, err)
	}
	if prediction == nil {
		return nil, newError(PredictionMissingAfterClassification, url, nil)
	}

	log.WithFields(logger.Fields{
		"real": prediction.RealProbability,
		"fake": prediction.FakeProbability,
	}).Info("Article classified")
	metrics.Requests.WithLabelValues("classified").Inc()
	return verdictFrom(prediction, sim), nil
}

func (p *Pipeline) similar(ctx context.Context, log *logger.Entry, url, title string) ([]string, error) {
	sim, err := p.deps.Similarity.FindSimilar(ctx, title)
	if err == nil {
		if sim == nil {
			sim = []string{}
		}
		return sim, nil
	}
	if p.opts.SimilarityFailOpen {
		log.Warnf("Similarity lookup failed, continuing without similar titles: %v", err)
		return []string{}, nil
	}
	return nil, newError(SimilarityLookupFailed, url, err)
}

func verdictFrom(p *models.Prediction, sim []string) *models.Verdict {
	return &models.Verdict{
		RealProbability: p.RealProbability,
		FakeProbability: p.FakeProbability,
		Title:           p.Title,
		Similar:         sim,
	}
}

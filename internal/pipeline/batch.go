package pipeline

import (
	"context"
	"fmt"

	"news_verifier/internal/logger"
	"news_verifier/internal/metrics"
	"news_verifier/internal/models"
)

type entryOutcome string

const (
	outcomeProcessed    entryOutcome = "processed"
	outcomeDuplicate    entryOutcome = "duplicate"
	outcomeStale        entryOutcome = "stale_article"
	outcomeEmptyContent entryOutcome = "empty_content"
	outcomeFailed       entryOutcome = "failed"
)

// RunHeadlines находит свежие заголовки и по очереди обрабатывает каждый.
// Ошибка поиска заголовков прерывает весь прогон. Ошибка отдельного заголовка только логируется
// и не мешает остальным. Между заголовками проверяется ctx: при отмене возвращается частичный отчёт.
func (p *Pipeline) RunHeadlines(ctx context.Context) (*models.BatchReport, error) {
	if !p.batchBusy.CompareAndSwap(false, true) {
		return nil, ErrBatchInProgress
	}
	defer p.batchBusy.Store(false)

	log := logger.FromContext(ctx, logger.Component("batch"))
	log.Info("Headline batch started")

	entries, err := p.deps.Discoverer.Discover(ctx)
	if err != nil {
		metrics.BatchRuns.WithLabelValues("discovery_failed").Inc()
		return nil, newError(HeadlineDiscoveryFailed, "", err)
	}

	report := &models.BatchReport{Discovered: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			metrics.BatchRuns.WithLabelValues("cancelled").Inc()
			log.WithField("report", report).Warn("Headline batch cancelled")
			return report, err
		}

		entryLog := log.WithFields(logger.Fields{"url": entry.URL, "press": entry.PressName})
		outcome, err := p.processEntry(ctx, entryLog, entry)
		if err != nil {
			entryLog.Errorf("Headline processing failed: %v", err)
		}
		metrics.BatchEntries.WithLabelValues(string(outcome)).Inc()

		switch outcome {
		case outcomeProcessed:
			report.Processed++
		case outcomeFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	metrics.BatchRuns.WithLabelValues("ok").Inc()
	log.WithFields(logger.Fields{
		"discovered": report.Discovered,
		"processed":  report.Processed,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
	}).Info("Headline batch finished")
	return report, nil
}

// processEntry обрабатывает один заголовок. Паника внутри тоже считается ошибкой только этого заголовка.
func (p *Pipeline) processEntry(ctx context.Context, log *logger.Entry, entry models.HeadlineEntry) (outcome entryOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = outcomeFailed, fmt.Errorf("panic: %v", r)
		}
	}()

	if err := p.deps.Headlines.AppendHeadline(ctx, entry.PressName, entry.URL); err != nil {
		return outcomeFailed, newError(StorageFailed, entry.URL, err)
	}

	// Проверяется наличие статьи, а не предсказания: статья, сохранённая без предсказания,
	// здесь больше не классифицируется. Такие случаи помечаются в логе.
	exists, err := p.deps.Articles.ArticleExists(ctx, entry.URL)
	if err != nil {
		return outcomeFailed, newError(StorageFailed, entry.URL, err)
	}
	if exists {
		prediction, err := p.deps.Cache.LookupPrediction(ctx, entry.URL)
		if err == nil && prediction == nil {
			log.Warn("Skipping stored article that has no prediction")
			return outcomeStale, nil
		}
		log.Debug("Duplicate URL, skipping")
		return outcomeDuplicate, nil
	}

	article, err := p.deps.Scraper.Fetch(ctx, entry.URL)
	if err != nil {
		return outcomeFailed, newError(ScrapeFailed, entry.URL, err)
	}
	if article.Content == "" {
		log.Warn("Article content is empty, skipping")
		return outcomeEmptyContent, nil
	}

	if _, _, err := p.deps.Articles.GetOrCreateArticle(ctx, entry.URL, article.Title, article.Content); err != nil {
		return outcomeFailed, newError(StorageFailed, entry.URL, err)
	}
	log.WithField("title", article.Title).Info("Article saved")

	if err := p.deps.Classifier.Classify(ctx, entry.URL); err != nil {
		return outcomeFailed, newError(ClassificationFailed, entry.URL, err)
	}

	prediction, err := p.deps.Cache.LookupPrediction(ctx, entry.URL)
	switch {
	case err != nil:
		log.Warnf("Prediction lookup failed: %v", err)
	case prediction == nil:
		log.Warn("Prediction not found after classification")
	default:
		log.WithFields(logger.Fields{
			"real": prediction.RealProbability,
			"fake": prediction.FakeProbability,
		}).Info("Article classified")
	}
	return outcomeProcessed, nil
}

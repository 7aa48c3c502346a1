// Package classifier запускает внешний процесс классификации статьи.
// Процесс сам находит статью по URL и записывает строку в predictions; результат он не возвращает.
package classifier

import (
	"context"
	"fmt"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"
	"news_verifier/internal/metrics"
	"news_verifier/internal/process"

	"golang.org/x/sync/semaphore"
)

// Invoker ограничивает число одновременно запущенных процессов классификатора.
type Invoker struct {
	command []string
	timeout time.Duration
	slots   *semaphore.Weighted
}

// NewInvoker создаёт Invoker по настройкам cfg.
func NewInvoker(cfg config.ClassifierConfig) *Invoker {
	return &Invoker{
		command: cfg.Command,
		timeout: cfg.Timeout(),
		slots:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Classify запускает классификатор с url последним аргументом и ждёт завершения.
// Нулевой код возврата не гарантирует, что предсказание записано: вызывающий должен перепроверить.
func (i *Invoker) Classify(ctx context.Context, url string) error {
	log := logger.FromContext(ctx, logger.Component("classifier")).WithField("url", url)

	if err := i.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for classifier slot: %w", err)
	}
	defer i.slots.Release(1)

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	argv := make([]string, 0, len(i.command)+1)
	argv = append(argv, i.command...)
	argv = append(argv, url)

	start := time.Now()
	err := process.Run(ctx, argv, nil, log)
	metrics.ClassifierDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassifierRuns.WithLabelValues("failed").Inc()
		return err
	}

	metrics.ClassifierRuns.WithLabelValues("ok").Inc()
	log.Debug("Classifier finished")
	return nil
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"
	"news_verifier/internal/models"
	"news_verifier/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// BatchRunner - то, что планировщик запускает по расписанию.
type BatchRunner interface {
	RunHeadlines(ctx context.Context) (*models.BatchReport, error)
}

// Scheduler периодически запускает прогон заголовков по cron-выражению.
type Scheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	timeout time.Duration
	log     *logger.Entry
	ctx     context.Context
}

// New разбирает cfg.Spec (пять полей или дескриптор вида @hourly) и регистрирует задачу.
func New(cfg config.SchedulerConfig, runner BatchRunner) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	log := logger.Component("scheduler").WithField("spec", cfg.Spec)

	s := &Scheduler{
		runner:  runner,
		timeout: cfg.RunTimeout(),
		log:     log,
		ctx:     context.Background(),
	}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
	)

	if _, err := s.cron.AddFunc(cfg.Spec, func() { s.runOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
// После отмены дожидается завершения текущего прогона.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.log.Info("Starting scheduler")
	s.cron.Start()

	<-ctx.Done()

	s.log.Info("Stopping scheduler by context")
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("Starting scheduled headline batch")

	report, err := s.runner.RunHeadlines(ctx)
	switch {
	case errors.Is(err, pipeline.ErrBatchInProgress):
		s.log.Warn("Skipping scheduled run: batch already in progress")
	case err != nil:
		s.log.WithField("duration", time.Since(start).String()).Errorf("Scheduled headline batch failed: %v", err)
	default:
		s.log.WithFields(logger.Fields{
			"discovered": report.Discovered,
			"processed":  report.Processed,
			"skipped":    report.Skipped,
			"failed":     report.Failed,
			"duration":   time.Since(start).String(),
		}).Info("Scheduled headline batch completed")
	}
}

// cronLogger направляет внутренний журнал cron в logrus.
type cronLogger struct {
	log *logger.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(kv(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(kv(keysAndValues)).Errorf("%s: %v", msg, err)
}

func kv(keysAndValues []any) logger.Fields {
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

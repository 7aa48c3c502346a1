// Package headlines находит свежие заголовки для пакетной проверки.
package headlines

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"
	"news_verifier/internal/models"
	"news_verifier/internal/process"
)

var (
	ErrNotArray   = errors.New("headline output is not a JSON array")
	ErrMissingURL = errors.New("headline entry has no url")
)

// ProcessDiscoverer запускает внешний скрипт без аргументов и читает из stdout JSON-массив
// элементов {press_name, title, url}.
type ProcessDiscoverer struct {
	command []string
	timeout time.Duration
}

func NewProcessDiscoverer(cfg config.HeadlinesConfig) *ProcessDiscoverer {
	return &ProcessDiscoverer{command: cfg.Command, timeout: cfg.Timeout()}
}

// Discover возвращает ошибку при ненулевом коде возврата или выводе, который не является JSON-массивом.
func (d *ProcessDiscoverer) Discover(ctx context.Context) ([]models.HeadlineEntry, error) {
	log := logger.FromContext(ctx, logger.Component("headlines"))

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var out bytes.Buffer
	if err := process.Run(ctx, d.command, &out, log); err != nil {
		return nil, fmt.Errorf("headline script execution failed: %w", err)
	}

	var entries []models.HeadlineEntry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse headline script output: %w", err)
	}
	// null декодируется в nil без ошибки
	if entries == nil {
		return nil, ErrNotArray
	}
	for i, e := range entries {
		if e.URL == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrMissingURL, i)
		}
	}

	log.WithField("count", len(entries)).Info("Headlines discovered")
	return entries, nil
}

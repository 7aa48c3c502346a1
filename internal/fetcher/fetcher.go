package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/metrics"
	"news_verifier/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrUnexpectedStatusCode означает ответ сервера с кодом, отличным от 200.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

var contentCleaner = strings.NewReplacer("\n", "", "\t", "")

// Scraper загружает страницу статьи и извлекает заголовок и текст по CSS-селекторам.
// Одна попытка на вызов, без повторов.
type Scraper struct {
	client          *http.Client
	limiter         *rate.Limiter
	timeout         time.Duration
	userAgent       string
	titleSelector   string
	contentSelector string
}

// NewScraper создаёт Scraper по настройкам cfg.
func NewScraper(cfg config.ScraperConfig) *Scraper {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Scraper{
		client:          &http.Client{Timeout: cfg.Timeout()},
		limiter:         rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		timeout:         cfg.Timeout(),
		userAgent:       cfg.UserAgent,
		titleSelector:   cfg.TitleSelector,
		contentSelector: cfg.ContentSelector,
	}
}

// Fetch загружает url и возвращает заголовок и текст статьи.
// Пустой текст не считается ошибкой: решение остаётся за вызывающим.
func (s *Scraper) Fetch(ctx context.Context, url string) (*models.ScrapedArticle, error) {
	start := time.Now()
	defer func() { metrics.ScrapeDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &models.ScrapedArticle{
		URL:     url,
		Title:   s.extractTitle(doc),
		Content: s.extractContent(doc),
	}, nil
}

// extractTitle берёт заголовок из titleSelector, затем из <title>, затем из og:title.
func (s *Scraper) extractTitle(doc *goquery.Document) string {
	if s.titleSelector != "" {
		if title := strings.TrimSpace(doc.Find(s.titleSelector).First().Text()); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}

	return ""
}

func (s *Scraper) extractContent(doc *goquery.Document) string {
	if s.contentSelector == "" {
		return ""
	}
	text := strings.TrimSpace(doc.Find(s.contentSelector).Text())
	return strings.TrimSpace(contentCleaner.Replace(text))
}

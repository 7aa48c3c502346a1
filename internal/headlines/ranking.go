package headlines

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"
	"news_verifier/internal/models"

	"github.com/PuerkitoBio/goquery"
)

var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// RankingDiscoverer разбирает страницу рейтинга самых читаемых новостей без внешнего процесса.
// Берутся только блоки изданий из targetPress, не больше perPress ссылок из каждого.
type RankingDiscoverer struct {
	client      *http.Client
	pageURL     string
	userAgent   string
	targetPress map[string]struct{}
	perPress    int
}

func NewRankingDiscoverer(cfg config.HeadlinesConfig, userAgent string) *RankingDiscoverer {
	press := make(map[string]struct{}, len(cfg.TargetPress))
	for _, name := range cfg.TargetPress {
		press[name] = struct{}{}
	}
	return &RankingDiscoverer{
		client:      &http.Client{Timeout: cfg.Timeout()},
		pageURL:     cfg.RankingURL,
		userAgent:   userAgent,
		targetPress: press,
		perPress:    cfg.PerPress,
	}
}

func (d *RankingDiscoverer) Discover(ctx context.Context) ([]models.HeadlineEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}

	entries := []models.HeadlineEntry{}
	doc.Find("div.rankingnews_box").Each(func(_ int, box *goquery.Selection) {
		press := strings.TrimSpace(box.Find("strong.rankingnews_name").First().Text())
		if _, ok := d.targetPress[press]; !ok {
			return
		}

		box.Find("li").Slice(0, min(d.perPress, box.Find("li").Length())).Each(func(_ int, li *goquery.Selection) {
			link := li.Find("a").First()
			href, ok := link.Attr("href")
			if !ok || href == "" {
				return
			}
			entries = append(entries, models.HeadlineEntry{
				PressName: press,
				Title:     strings.TrimSpace(link.Text()),
				URL:       href,
			})
		})
	})

	logger.FromContext(ctx, logger.Component("headlines")).
		WithField("count", len(entries)).
		Info("Headlines discovered from ranking page")
	return entries, nil
}

package pipeline_test

import (
	"context"

	"news_verifier/internal/models"
	"news_verifier/internal/pipeline"

	"github.com/stretchr/testify/mock"
)

type mockCache struct{ mock.Mock }

func (m *mockCache) LookupPrediction(ctx context.Context, url string) (*models.Prediction, error) {
	args := m.Called(ctx, url)
	p, _ := args.Get(0).(*models.Prediction)
	return p, args.Error(1)
}

type mockArticles struct{ mock.Mock }

func (m *mockArticles) GetOrCreateArticle(ctx context.Context, url, title, content string) (int64, bool, error) {
	args := m.Called(ctx, url, title, content)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockArticles) ArticleExists(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

type mockHeadlines struct{ mock.Mock }

func (m *mockHeadlines) AppendHeadline(ctx context.Context, pressName, url string) error {
	return m.Called(ctx, pressName, url).Error(0)
}

type mockScraper struct{ mock.Mock }

func (m *mockScraper) Fetch(ctx context.Context, url string) (*models.ScrapedArticle, error) {
	args := m.Called(ctx, url)
	a, _ := args.Get(0).(*models.ScrapedArticle)
	return a, args.Error(1)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockSimilarity struct{ mock.Mock }

func (m *mockSimilarity) FindSimilar(ctx context.Context, title string) ([]string, error) {
	args := m.Called(ctx, title)
	s, _ := args.Get(0).([]string)
	return s, args.Error(1)
}

type mockDiscoverer struct{ mock.Mock }

func (m *mockDiscoverer) Discover(ctx context.Context) ([]models.HeadlineEntry, error) {
	args := m.Called(ctx)
	e, _ := args.Get(0).([]models.HeadlineEntry)
	return e, args.Error(1)
}

type fixture struct {
	cache      *mockCache
	articles   *mockArticles
	headlines  *mockHeadlines
	scraper    *mockScraper
	classifier *mockClassifier
	similarity *mockSimilarity
	discoverer *mockDiscoverer
}

func newFixture() *fixture {
	return &fixture{
		cache:      &mockCache{},
		articles:   &mockArticles{},
		headlines:  &mockHeadlines{},
		scraper:    &mockScraper{},
		classifier: &mockClassifier{},
		similarity: &mockSimilarity{},
		discoverer: &mockDiscoverer{},
	}
}

func (f *fixture) pipeline(opts pipeline.Options) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Cache:      f.cache,
		Articles:   f.articles,
		Headlines:  f.headlines,
		Scraper:    f.scraper,
		Classifier: f.classifier,
		Similarity: f.similarity,
		Discoverer: f.discoverer,
	}, opts)
}

package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"news_verifier/internal/models"
	"news_verifier/internal/pipeline"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func entries(urls ...string) []models.HeadlineEntry {
	out := make([]models.HeadlineEntry, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.HeadlineEntry{PressName: "X", Title: "title " + u, URL: u})
	}
	return out
}

// expectFresh настраивает полный успешный путь для нового url.
func expectFresh(f *fixture, url string) {
	f.headlines.On("AppendHeadline", mock.Anything, "X", url).Return(nil)
	f.articles.On("ArticleExists", mock.Anything, url).Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, url).Return(&models.ScrapedArticle{URL: url, Title: "T " + url, Content: "body"}, nil)
	f.articles.On("GetOrCreateArticle", mock.Anything, url, "T "+url, "body").Return(int64(1), true, nil)
	f.classifier.On("Classify", mock.Anything, url).Return(nil)
	f.cache.On("LookupPrediction", mock.Anything, url).Return(&models.Prediction{RealProbability: 0.8, FakeProbability: 0.2}, nil)
}

func TestRunHeadlines_IsolatesEntryFailures(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1", "U2", "U3"), nil)

	expectFresh(f, "U1")
	expectFresh(f, "U3")

	f.headlines.On("AppendHeadline", mock.Anything, "X", "U2").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U2").Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, "U2").Return(nil, errors.New("connection reset"))

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.BatchReport{Discovered: 3, Processed: 2, Failed: 1}, report)

	f.classifier.AssertCalled(t, "Classify", mock.Anything, "U1")
	f.classifier.AssertCalled(t, "Classify", mock.Anything, "U3")
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, "U2")
	f.articles.AssertNotCalled(t, "GetOrCreateArticle", mock.Anything, "U2", mock.Anything, mock.Anything)
}

func TestRunHeadlines_ExistingArticleOnlyLogsHeadline(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).
		Return([]models.HeadlineEntry{{PressName: "X", Title: "H1", URL: "U1"}}, nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(true, nil)
	f.cache.On("LookupPrediction", mock.Anything, "U1").Return(&models.Prediction{Title: "H1"}, nil)

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.BatchReport{Discovered: 1, Skipped: 1}, report)

	f.headlines.AssertNumberOfCalls(t, "AppendHeadline", 1)
	f.scraper.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestRunHeadlines_StoredArticleWithoutPredictionIsNotRetried(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(true, nil)
	f.cache.On("LookupPrediction", mock.Anything, "U1").Return(nil, nil)

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestRunHeadlines_EmptyContentIsSkipped(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, "U1").Return(&models.ScrapedArticle{URL: "U1", Title: "T"}, nil)

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.BatchReport{Discovered: 1, Skipped: 1}, report)
	f.articles.AssertNotCalled(t, "GetOrCreateArticle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunHeadlines_MissingPredictionIsOnlyLogged(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, "U1").Return(&models.ScrapedArticle{URL: "U1", Title: "T", Content: "C"}, nil)
	f.articles.On("GetOrCreateArticle", mock.Anything, "U1", "T", "C").Return(int64(7), true, nil)
	f.classifier.On("Classify", mock.Anything, "U1").Return(nil)
	f.cache.On("LookupPrediction", mock.Anything, "U1").Return(nil, nil)

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)
}

func TestRunHeadlines_HeadlineAppendedOnEveryRun(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(false, nil).Once()
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(true, nil)
	f.scraper.On("Fetch", mock.Anything, "U1").Return(&models.ScrapedArticle{URL: "U1", Title: "T", Content: "C"}, nil)
	f.articles.On("GetOrCreateArticle", mock.Anything, "U1", "T", "C").Return(int64(1), true, nil)
	f.classifier.On("Classify", mock.Anything, "U1").Return(nil)
	f.cache.On("LookupPrediction", mock.Anything, "U1").Return(&models.Prediction{Title: "T"}, nil)

	p := f.pipeline(pipeline.Options{})
	_, err := p.RunHeadlines(context.Background())
	require.NoError(t, err)
	_, err = p.RunHeadlines(context.Background())
	require.NoError(t, err)

	f.headlines.AssertNumberOfCalls(t, "AppendHeadline", 2)
	f.classifier.AssertNumberOfCalls(t, "Classify", 1)
}

func TestRunHeadlines_AppendFailureDoesNotStopBatch(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1", "U2"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(errors.New("db down"))
	expectFresh(f, "U2")

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.BatchReport{Discovered: 2, Processed: 1, Failed: 1}, report)
}

func TestRunHeadlines_PanicIsIsolated(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(entries("U1", "U2"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, "U1").Panic("nil map")
	expectFresh(f, "U2")

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, 1, report.Processed)
}

func TestRunHeadlines_DiscoveryFailure(t *testing.T) {
	f := newFixture()
	f.discoverer.On("Discover", mock.Anything).Return(nil, errors.New("failed to parse headline script output"))

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(context.Background())
	require.Nil(t, report)
	require.True(t, errors.Is(err, pipeline.HeadlineDiscoveryFailed))
	f.headlines.AssertNotCalled(t, "AppendHeadline", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunHeadlines_CancelledBetweenEntries(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.discoverer.On("Discover", mock.Anything).Return(entries("U1", "U2"), nil)
	f.headlines.On("AppendHeadline", mock.Anything, "X", "U1").Return(nil)
	f.articles.On("ArticleExists", mock.Anything, "U1").Return(false, nil)
	f.scraper.On("Fetch", mock.Anything, "U1").Return(&models.ScrapedArticle{URL: "U1", Title: "T", Content: "C"}, nil)
	f.articles.On("GetOrCreateArticle", mock.Anything, "U1", "T", "C").Return(int64(1), true, nil)
	f.classifier.On("Classify", mock.Anything, "U1").Run(func(mock.Arguments) { cancel() }).Return(nil)
	f.cache.On("LookupPrediction", mock.Anything, "U1").Return(&models.Prediction{Title: "T"}, nil)

	report, err := f.pipeline(pipeline.Options{}).RunHeadlines(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, &models.BatchReport{Discovered: 2, Processed: 1}, report)
	f.headlines.AssertNotCalled(t, "AppendHeadline", mock.Anything, "X", "U2")
}

func TestRunHeadlines_RejectsOverlappingRun(t *testing.T) {
	f := newFixture()
	started := make(chan struct{})
	release := make(chan struct{})
	f.discoverer.On("Discover", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.HeadlineEntry{}, nil).Once()

	p := f.pipeline(pipeline.Options{})
	done := make(chan error, 1)
	go func() {
		_, err := p.RunHeadlines(context.Background())
		done <- err
	}()

	<-started
	_, err := p.RunHeadlines(context.Background())
	require.ErrorIs(t, err, pipeline.ErrBatchInProgress)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first batch did not finish")
	}
}

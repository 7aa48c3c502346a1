// Package similarity ищет заголовки, похожие на заданный. Результаты не кэшируются.
package similarity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"news_verifier/internal/config"
)

var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Remote обращается к внешнему сервису похожих заголовков:
// GET {baseURL}/similar?title=... → {"titles": [...]}.
type Remote struct {
	client  *http.Client
	baseURL string
}

func NewRemote(cfg config.SimilarityConfig) *Remote {
	return &Remote{
		client:  &http.Client{Timeout: cfg.Timeout()},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type similarResponse struct {
	Titles []string `json:"titles"`
}

func (r *Remote) FindSimilar(ctx context.Context, title string) ([]string, error) {
	endpoint := r.baseURL + "/similar?" + url.Values{"title": {title}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("similarity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var body similarResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode similarity response: %w", err)
	}
	if body.Titles == nil {
		body.Titles = []string{}
	}
	return body.Titles, nil
}

package models

import "time"

// Article - сохранённое содержимое статьи. URL уникален, содержимое после сохранения не меняется.
type Article struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ScrapedArticle - результат скрапинга одной страницы. Пустой Content допустим.
type ScrapedArticle struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Prediction - результат классификатора вместе с заголовком статьи, к которой он относится.
type Prediction struct {
	RealProbability float64 `json:"real_news_probability"`
	FakeProbability float64 `json:"fake_news_probability"`
	Title           string  `json:"title"`
}

// Verdict - ответ на проверку одного URL: предсказание и похожие заголовки.
type Verdict struct {
	RealProbability float64  `json:"real_news_probability"`
	FakeProbability float64  `json:"fake_news_probability"`
	Title           string   `json:"title"`
	Similar         []string `json:"sim"`
}

package models

import "time"

// HeadlineEntry - один элемент вывода процесса поиска заголовков.
type HeadlineEntry struct {
	PressName string `json:"press_name"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// HeadlineRecord - запись журнала заголовков. Каждый запуск добавляет строку, даже для известного URL.
type HeadlineRecord struct {
	PressName string    `json:"press_name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentHeadline - заголовок из недавнего окна вместе с предсказанием.
type RecentHeadline struct {
	PressName       string  `json:"press_name"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	RealProbability float64 `json:"real_news_probability"`
	FakeProbability float64 `json:"fake_news_probability"`
}

// BatchReport подводит итог одного прогона заголовков.
type BatchReport struct {
	Discovered int `json:"discovered"`
	Processed  int `json:"processed"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

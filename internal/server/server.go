package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"news_verifier/internal/logger"
	"news_verifier/internal/metrics"
	"news_verifier/internal/models"
	"news_verifier/internal/pipeline"
)

type Verifier interface {
	Verify(ctx context.Context, url string) (*models.Verdict, error)
}

type BatchRunner interface {
	RunHeadlines(ctx context.Context) (*models.BatchReport, error)
}

type HeadlineReader interface {
	RecentHeadlines(ctx context.Context, window time.Duration) ([]models.RecentHeadline, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server хранит зависимости HTTP-обработчиков.
type Server struct {
	verifier  Verifier
	batch     BatchRunner
	headlines HeadlineReader
	db        Pinger
	window    time.Duration
	helpPage  string
}

// NewServer создаёт Server. window - окно для /api/headlines, helpPage - путь к статической справке.
func NewServer(verifier Verifier, batch BatchRunner, headlines HeadlineReader, db Pinger, window time.Duration, helpPage string) *Server {
	return &Server{
		verifier:  verifier,
		batch:     batch,
		headlines: headlines,
		db:        db,
		window:    window,
		helpPage:  helpPage,
	}
}

// Routes регистрирует обработчики и оборачивает их в middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/receive-url", s.ReceiveURL)
	mux.HandleFunc("GET /api/headlines", s.GetHeadlines)
	mux.HandleFunc("GET /api/test-headlines", s.RunHeadlines)
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.HandleFunc("GET /help", s.Help)
	mux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// HealthCheck отвечает 200 OK, если база доступна, иначе 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		http.Error(w, "DB unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("OK"))
}

type receiveURLRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ReceiveURL проверяет присланный URL: из кэша или через скрапинг и классификацию.
func (s *Server) ReceiveURL(w http.ResponseWriter, r *http.Request) {
	var req receiveURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	verdict, err := s.verifier.Verify(r.Context(), req.URL)
	if err != nil {
		logger.FromContext(r.Context(), logger.Component("server")).
			WithFields(logger.Fields{"url": req.URL, "kind": pipeline.KindOf(err)}).
			Errorf("Verification failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// GetHeadlines возвращает заголовки за последнее окно вместе с предсказаниями.
func (s *Server) GetHeadlines(w http.ResponseWriter, r *http.Request) {
	headlines, err := s.headlines.RecentHeadlines(r.Context(), s.window)
	if err != nil {
		logger.FromContext(r.Context(), logger.Component("server")).Errorf("Error fetching headlines: %v", err)
		http.Error(w, "Error fetching headlines", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, headlines)
}

// RunHeadlines немедленно запускает пакетную обработку заголовков.
// Прогон не отменяется, если клиент отключился.
func (s *Server) RunHeadlines(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	report, err := s.batch.RunHeadlines(ctx)
	switch {
	case errors.Is(err, pipeline.ErrBatchInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logger.FromContext(ctx, logger.Component("server")).Errorf("Headline batch failed: %v", err)
		http.Error(w, "Headline batch failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Help отдаёт статическую страницу справки.
func (s *Server) Help(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.helpPage)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Component("server").Errorf("Failed to encode response: %v", err)
	}
}

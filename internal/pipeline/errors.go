package pipeline

import (
	"errors"
	"fmt"
)

// Kind - вид отказа конвейера. Kind сам реализует error, поэтому errors.Is(err, ScrapeFailed) работает
// для любой *Error этого вида.
type Kind string

const (
	ScrapeFailed                         Kind = "ScrapeFailed"
	StorageFailed                        Kind = "StorageFailed"
	ClassificationFailed                 Kind = "ClassificationFailed"
	PredictionMissingAfterClassification Kind = "PredictionMissingAfterClassification"
	HeadlineDiscoveryFailed              Kind = "HeadlineDiscoveryFailed"
	SimilarityLookupFailed               Kind = "SimilarityLookupFailed"
)

func (k Kind) Error() string { return string(k) }

// ErrBatchInProgress возвращается, если прогон заголовков уже идёт в этом процессе.
var ErrBatchInProgress = errors.New("headline batch already in progress")

// Error связывает вид отказа с URL и исходной ошибкой.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func newError(kind Kind, url string, err error) *Error {
	return &Error{Kind: kind, URL: url, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.URL != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.URL)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf возвращает вид отказа из цепочки err или пустую строку.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

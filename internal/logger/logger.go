package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type (
	Entry  = logrus.Entry
	Fields = logrus.Fields
)

type requestIDKey struct{}

// Init настраивает JSON-формат и уровень логирования. DEBUG=true всегда включает debug.
func Init(level string) {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if os.Getenv("DEBUG") == "true" {
		lvl = logrus.DebugLevel
	}
	Log.SetLevel(lvl)
}

// Component возвращает запись с полем component.
func Component(name string) *Entry {
	return Log.WithField("component", name)
}

// WithRequestID кладёт идентификатор запроса в контекст.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// FromContext дополняет запись полем request_id, если он есть в контексте.
func FromContext(ctx context.Context, entry *Entry) *Entry {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return entry.WithField("request_id", id)
	}
	return entry
}

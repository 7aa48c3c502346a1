// Package process запускает внешние программы (классификатор, поиск заголовков)
// и превращает их вывод в строки лога.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"news_verifier/internal/logger"

	"github.com/sirupsen/logrus"
)

// ErrNonZeroExit означает, что процесс завершился с ненулевым кодом.
var ErrNonZeroExit = errors.New("process exited with non-zero status")

// waitDelay ограничивает ожидание закрытия pipe после завершения процесса:
// дочерние процессы, унаследовавшие stdout, не должны держать Run бесконечно.
const waitDelay = 5 * time.Second

// Run запускает argv[0] с аргументами argv[1:] и ждёт завершения.
// Если stdout == nil, стандартный вывод пишется в лог на уровне debug; stderr всегда пишется в лог на уровне warn.
// Процесс убивается, когда ctx завершается.
func Run(ctx context.Context, argv []string, stdout io.Writer, log *logger.Entry) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay

	stderr := &lineLogger{log: log.WithField("stream", "stderr"), level: logrus.WarnLevel}
	defer stderr.Flush()
	cmd.Stderr = stderr

	if stdout == nil {
		out := &lineLogger{log: log.WithField("stream", "stdout"), level: logrus.DebugLevel}
		defer out.Flush()
		stdout = out
	}
	cmd.Stdout = stdout

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s killed: %w", argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s exited with code %d", ErrNonZeroExit, argv[0], exitErr.ExitCode())
	}
	return fmt.Errorf("run %s: %w", argv[0], err)
}

// lineLogger пишет каждую полную строку вывода отдельной записью лога.
type lineLogger struct {
	log   *logger.Entry
	level logrus.Level
	buf   bytes.Buffer
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		line, err := l.buf.ReadString('\n')
		if err != nil {
			// неполная строка остаётся в буфере до следующей записи
			l.buf.Reset()
			l.buf.WriteString(line)
			return len(p), nil
		}
		l.emit(line)
	}
}

func (l *lineLogger) Flush() {
	if l.buf.Len() > 0 {
		l.emit(l.buf.String())
		l.buf.Reset()
	}
}

func (l *lineLogger) emit(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	l.log.Log(l.level, line)
}

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	gormlogger "gorm.io/gorm/logger"
)

// New builds the process logger from LOG_LEVEL / LOG_FORMAT values and
// installs it as the slog default.
func New(level, format string) *slog.Logger {
	return newLogger(os.Stdout, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Gorm routes SQL logging through l. Every query is traced with
// LOG_LEVEL=debug; otherwise only slow queries and errors are, as warnings.
func Gorm(l *slog.Logger, level string) gormlogger.Interface {
	lvl, out := gormlogger.Warn, slog.LevelWarn
	if ParseLevel(level) == slog.LevelDebug {
		lvl, out = gormlogger.Info, slog.LevelDebug
	}
	return gormlogger.New(printer{l: l, level: out}, gormlogger.Config{
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

type printer struct {
	l     *slog.Logger
	level slog.Level
}

func (p printer) Printf(format string, args ...interface{}) {
	p.l.Log(context.Background(), p.level, strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

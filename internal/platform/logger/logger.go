// Pacote logger expõe o slog JSON compartilhado pelos binários.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var (
	defaultLogger = novo(os.Stdout, slog.LevelInfo)
)

func novo(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func L() *slog.Logger {
	return defaultLogger
}

func SetLevel(level slog.Level) {
	defaultLogger = novo(os.Stdout, level)
}

// Discard devolve um logger silencioso para testes.
func Discard() *slog.Logger {
	return novo(io.Discard, slog.LevelError)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

package auth

import (
	"fmt"
	"log/slog"
)

// SlogLogger adapts a slog.Logger to the printf style Logger interface
type SlogLogger struct {
	logger *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps the given slog logger. A nil argument falls back to
// slog.Default.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (s *SlogLogger) Debug(format string, args ...any) {
	s.logger.Debug(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Info(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Warn(format string, args ...any) {
	s.logger.Warn(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Error(format string, args ...any) {
	s.logger.Error(fmt.Sprintf(format, args...))
}

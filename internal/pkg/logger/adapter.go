package logger

import (
	"go.uber.org/zap"

	"cross_swap/internal/app/port"
)

// zapAdapter implements port.Logger over a zap.SugaredLogger. It lets
// services depend on the narrow port.Logger interface while infrastructure
// keeps passing the concrete *zap.Logger around.
type zapAdapter struct {
	s *zap.SugaredLogger
}

// NewZapAdapter wraps a zap logger in the port.Logger interface. Args are
// alternating key/value pairs, as with SugaredLogger's *w methods.
func NewZapAdapter(l *zap.Logger) port.Logger {
	return &zapAdapter{s: l.Sugar()}
}

func (a *zapAdapter) Info(msg string, args ...any) {
	a.s.Infow(msg, args...)
}

func (a *zapAdapter) Debug(msg string, args ...any) {
	a.s.Debugw(msg, args...)
}

func (a *zapAdapter) Warn(msg string, args ...any) {
	a.s.Warnw(msg, args...)
}

func (a *zapAdapter) Error(msg string, args ...any) {
	a.s.Errorw(msg, args...)
}

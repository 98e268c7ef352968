package gameapi

import (
	"context"
	"log/slog"

	"github.com/roach88/gamify/internal/model"
)

// Notifier delivers user-facing messages. kind is one of "info",
// "success", "warning" or "error" by convention.
type Notifier interface {
	Notify(ctx context.Context, message, kind string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message, kind string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, message, kind string) {
	f(ctx, message, kind)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{logger: l}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, message, kind string) {
	n.logger.InfoContext(ctx, message, "notification", kind)
}

// Notify shows message to the user and emits onNotification.
func (a *API) Notify(ctx context.Context, message, kind string) error {
	if kind == "" {
		kind = "info"
	}
	a.notifier.Notify(ctx, message, kind)
	a.logger.Debug("script notification", "message", message, "type", kind)
	return a.emit(ctx, model.EventNotification, map[string]any{"message": message, "type": kind})
}

// LogMessage writes a script's log line.
func (a *API) LogMessage(message string) {
	a.logger.Info(message, "source", "script")
}

// Toast writes a script's toast message to the log.
func (a *API) Toast(message, kind string) {
	a.logger.Info(message, "source", "script", "toast", kind)
}

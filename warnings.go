package switcher

import (
	"context"
	"log/slog"
)

// WarningCode classifies a non-fatal diagnostic.
type WarningCode string

const (
	// WarningPinnedDeactivate is raised when deactivating a pinned element.
	WarningPinnedDeactivate WarningCode = "pinned_deactivate"
	// WarningPinnedToggle is raised when toggling a pinned element.
	WarningPinnedToggle WarningCode = "pinned_toggle"
	// WarningActivateAllSingleMode is raised by ActivateAll when multiple
	// mode is disabled.
	WarningActivateAllSingleMode WarningCode = "activate_all_single_mode"
	// WarningActivateAllRuleRejected is raised by ActivateAll when the
	// activation rule rejects one of the inactive elements.
	WarningActivateAllRuleRejected WarningCode = "activate_all_rule_rejected"
	// WarningActivityHook is raised when an activity hook returns an error.
	WarningActivityHook WarningCode = "activity_hook"
)

// Warning describes a no-op that callers may want to surface. The state
// of the registry is unchanged by the operation that raised it.
type Warning struct {
	Code    WarningCode
	Element string
	Message string
	Err     error
}

// WarningLogger records warnings.
type WarningLogger interface {
	LogWarning(Warning)
}

// WarningLoggerFunc adapts a function to WarningLogger.
type WarningLoggerFunc func(Warning)

// LogWarning implements WarningLogger.
func (f WarningLoggerFunc) LogWarning(w Warning) {
	if f != nil {
		f(w)
	}
}

type noopWarningLogger struct{}

func (noopWarningLogger) LogWarning(Warning) {}

// NopWarningLogger discards every warning.
func NopWarningLogger() WarningLogger {
	return noopWarningLogger{}
}

type slogWarningLogger struct {
	logger *slog.Logger
}

// NewSlogWarningLogger logs warnings at WARN level on logger, falling back to
// slog.Default when logger is nil.
func NewSlogWarningLogger(logger *slog.Logger) WarningLogger {
	return slogWarningLogger{logger: logger}
}

func (l slogWarningLogger) LogWarning(w Warning) {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{slog.String("code", string(w.Code))}
	if w.Element != "" {
		attrs = append(attrs, slog.String("element", w.Element))
	}
	if w.Err != nil {
		attrs = append(attrs, slog.String("error", w.Err.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, w.Message, attrs...)
}

func defaultWarningLogger() WarningLogger {
	return NewSlogWarningLogger(nil)
}

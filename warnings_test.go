package switcher

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogWarningLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogWarningLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.LogWarning(Warning{
		Code:    WarningPinnedDeactivate,
		Element: "home",
		Message: "cannot deactivate always active element home",
		Err:     errors.New("extra"),
	})

	out := buf.String()
	for _, want := range []string{"level=WARN", "code=pinned_deactivate", "element=home", "error=extra"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRegistryRoutesElementWarnings(t *testing.T) {
	rec := &warningRecorder{}
	registry := newTestRegistry(t, map[string]Entry{
		"p": FromSpec(ElementSpec{Name: "p", AlwaysActive: true}),
	}, WithWarningLogger(rec))

	el, err := registry.GetElement("p")
	if err != nil {
		t.Fatalf("get element: %v", err)
	}
	el.Toggle()

	if len(rec.warnings) != 1 || rec.warnings[0].Code != WarningPinnedToggle {
		t.Fatalf("expected element warning to reach the registry logger, got %v", rec.codes())
	}
}

func TestNopWarningLogger(t *testing.T) {
	NopWarningLogger().LogWarning(Warning{Code: WarningPinnedToggle})
	var fn WarningLoggerFunc
	fn.LogWarning(Warning{})
}

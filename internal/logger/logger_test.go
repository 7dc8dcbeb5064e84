package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if l.GetLevel() != "warning" {
		t.Errorf("level: got %q, want warning", l.GetLevel())
	}

	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing")
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestModuleField(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "debug")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	l.Module("ui").With(Fields{"event": "IDENTIFY"}).Debug("started")
	out := buf.String()
	if !strings.Contains(out, "module=ui") {
		t.Errorf("missing module field: %s", out)
	}
	if !strings.Contains(out, "event=IDENTIFY") {
		t.Errorf("missing event field: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing to see")
}

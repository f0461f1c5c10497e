package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "tick", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info to be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tick=3") {
		t.Errorf("Expected warn line with key/value, got %q", out)
	}
}

func TestEventIsDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info").Event("DEATH", 4, "tick 9")
	if buf.Len() != 0 {
		t.Errorf("Expected events to be suppressed at info level, got %q", buf.String())
	}

	New(&buf, "debug").Event("DEATH", 4, "tick 9")
	if !strings.Contains(buf.String(), "EVENT:DEATH") {
		t.Errorf("Expected event line at debug level, got %q", buf.String())
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected info level, got %q", buf.String())
	}
}

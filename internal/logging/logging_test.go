package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "text", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("hidden")
	log.WithField("line", 3).Warn("too few fields")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "too few fields") || !strings.Contains(out, "line=3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("stamp")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "text", nil); err == nil {
		t.Errorf("expected error for unknown level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatalf("OrDiscard(nil) must return a logger")
	}
}

func TestEnabled(t *testing.T) {
	log, err := New("info", "text", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if Enabled(log, logrus.DebugLevel) {
		t.Errorf("debug must be disabled at info level")
	}
	if !Enabled(log.WithField("k", 1), logrus.InfoLevel) {
		t.Errorf("entry must inherit the logger level")
	}
	if Enabled(Discard(), logrus.ErrorLevel) {
		t.Errorf("discard logger must not emit errors")
	}
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Log.Info("discarded")
}

func TestInit_InvalidLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	if err == nil || !strings.Contains(err.Error(), "parse log level") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestInitWithOutput_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	l := New()
	if err := l.InitWithOutput("info", path); err != nil {
		t.Fatalf("InitWithOutput failed: %v", err)
	}
	l.Log.Debug("hidden")
	l.Log.Info("visible")
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "visible") {
		t.Errorf("expected info entry, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry must be filtered at info level, got %q", out)
	}
}

package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		tc := []struct {
			name  string
			level string
			want  log.Level
		}{
			{name: "debug", level: "debug", want: log.DebugLevel},
			{name: "warn", level: "warn", want: log.WarnLevel},
			{name: "unknown falls back to info", level: "verbose", want: log.InfoLevel},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				l := NewLogger(&bytes.Buffer{})
				SetLogLevel(l, tt.level)
				if got := l.GetLevel(); got != tt.want {
					t.Errorf("SetLogLevel(%q) level = %v, want %v", tt.level, got, tt.want)
				}
			})
		}
	})

	t.Run("WithLogger Adds Context", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "endpoint", "top-tracks")
		l.Info("loaded")

		if !strings.Contains(buf.String(), "endpoint=top-tracks") {
			t.Errorf("expected key-value pair in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger Creates Parent Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "wrapped.log")
		l, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		l.Info("hello")

		if !strings.Contains(readFile(t, path), "hello") {
			t.Error("expected log line written to file")
		}
	})
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", id, err)
	}
	if id == GenerateID() {
		t.Error("expected unique IDs")
	}
}

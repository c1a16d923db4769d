package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("asset stored") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("config loaded") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("config loaded") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("image skipped") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v (%q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Collected 2 assets")

	out := buf.String()
	if !strings.Contains(out, "Collected 2 assets (") || !strings.Contains(out, "s)") {
		t.Errorf("output = %q, want message with elapsed time", out)
	}
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, log.InfoLevel)

	if commandLogger(base, appName) != base || commandLogger(base, "") != base {
		t.Error("root command should keep the base logger")
	}

	commandLogger(base, "gc").Info("sweeping")
	if out := buf.String(); !strings.Contains(out, "gc") || !strings.Contains(out, "sweeping") {
		t.Errorf("output = %q, want gc prefix", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("hello")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}

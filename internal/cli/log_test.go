package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level      log.Level
		wantDebug  bool
		wantInfo   bool
		wantWarned bool
	}{
		{log.DebugLevel, true, true, true},
		{log.InfoLevel, false, true, true},
		{log.WarnLevel, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)

			logger.Debug("interned", "name", "db")
			logger.Info("walked", "visited", 3)
			logger.Warn("rebalance skipped")

			out := buf.String()
			for msg, want := range map[string]bool{
				"interned":          tt.wantDebug,
				"walked":            tt.wantInfo,
				"rebalance skipped": tt.wantWarned,
			} {
				if got := strings.Contains(out, msg); got != want {
					t.Errorf("%q logged = %v, want %v", msg, got, want)
				}
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))

	time.Sleep(10 * time.Millisecond)
	prog.done("Walked %d nodes", 3)

	out := buf.String()
	if !strings.Contains(out, "Walked 3 nodes (") {
		t.Errorf("progress.done() output = %q", out)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not logged after SetLogLevel: %q", buf.String())
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_VerboseGating(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewConsoleLoggerTo(&buf, false)

	quiet.Verbose("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output in non-verbose mode, got %q", buf.String())
	}

	var vbuf bytes.Buffer
	loud := NewConsoleLoggerTo(&vbuf, true)
	loud.Verbose("shown %d", 2)
	if got := vbuf.String(); got != "[verbose] shown 2\n" {
		t.Errorf("unexpected verbose output: %q", got)
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("plain message")
	logger.Error("broke: %v", "boom")

	out := buf.String()
	if !strings.Contains(out, "plain message\n") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[error] broke: boom\n") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestConsoleLogger_NoArgsWithPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	// A pre-formatted message containing % must not be reinterpreted.
	logger.Info("progress 50%")
	if got := buf.String(); got != "progress 50%\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	logger.Verbose("a")
	logger.Info("b")
	logger.Error("c")
}

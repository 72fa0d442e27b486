package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	if lw := newLogger(&buf, "LOG_LEVEL: "); lw == nil {
		t.Fail()
	}
}

func TestRender(t *testing.T) {
	if render("plain") != "plain" {
		t.Fail()
	}
	if render(bytes.ErrTooLarge) != bytes.ErrTooLarge.Error() {
		t.Fail()
	}
}

func TestLogWrite(t *testing.T) {
	var buf bytes.Buffer
	lw := newLogger(&buf, "WARN: ")
	lw.logWrite("cannot parse row %d", 3)
	line := buf.String()
	if !strings.Contains(line, "WARN: cannot parse row 3") {
		t.Errorf("unexpected log line: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("log line is not newline terminated")
	}
}

func TestUseLogFile(t *testing.T) {
	if err := UseLogFile(t.TempDir()); err != nil {
		t.Fail()
	}
	setOutput(bytes.NewBuffer(nil))
}

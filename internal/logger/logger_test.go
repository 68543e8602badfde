package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("chunked %d units", 3)

	if buf.String() != "[DEBUG] chunked 3 units\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Ingest")

	if buf.String() != "\n=== Ingest ===\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestWarnAndError_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("ocr failed for %s", "image1.png")
	Error("index write failed")

	want := "[WARN] ocr failed for image1.png\n[ERROR] index write failed\n"
	if buf.String() != want {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTimed(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	done := Timed("build")
	done()

	out := buf.String()
	if !strings.Contains(out, "[DEBUG] build: started") {
		t.Errorf("missing start line: %q", out)
	}
	if !strings.Contains(out, "[DEBUG] build: finished in") {
		t.Errorf("missing finish line: %q", out)
	}
}

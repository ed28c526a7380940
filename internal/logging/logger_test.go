package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTextLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Warn, Text, &buf)
	l.Info("hidden")
	l.Warn("shown", F("band", "mid"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown band=mid") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := Subsystem(New(Debug, JSON, &buf), "frontend").With(F("direction", "rx"))
	l.Error("tune failed", F("error", errors.New("boom")))

	line := strings.TrimSpace(buf.String())
	idx := strings.Index(line, "{")
	if idx < 0 {
		t.Fatalf("no JSON payload in %q", line)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(line[idx:]), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["subsystem"] != "frontend" || payload["direction"] != "rx" {
		t.Fatalf("missing context fields: %v", payload)
	}
	if payload["error"] != "boom" || payload["level"] != "ERROR" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("debug", "json", &bytes.Buffer{}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Parse("loud", "text", &bytes.Buffer{}); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := Parse("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	before := Default()
	SetDefault(nil)
	if Default() != before {
		t.Fatal("nil logger must not replace default")
	}
}

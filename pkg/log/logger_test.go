package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	logger := New("logtest")

	SetLevel(Warning)
	logger.Info("hidden message")
	logger.Warning("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("Info message should be filtered at Warning level, got %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("Warning message missing from output %q", out)
	}
	if !strings.Contains(out, "[logtest]") {
		t.Errorf("Module name missing from output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Level
		wantErr  bool
	}{
		{name: "Debug", input: "debug", expected: Debug},
		{name: "Mixed case", input: " Info ", expected: Info},
		{name: "Warn alias", input: "warn", expected: Warning},
		{name: "Unknown", input: "verbose", expected: Notice, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if level != tt.expected {
				t.Errorf("Expected level %d, got %d", tt.expected, level)
			}
		})
	}
}

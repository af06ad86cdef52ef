package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{" WARN ", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"loud", zapcore.InfoLevel, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseLevel(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildLogger(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		logger, err := BuildLogger("fhurld", "nonsense", env)
		if err != nil {
			t.Fatalf("BuildLogger(%s): %v", env, err)
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("BuildLogger(%s) with a bad level should log at info", env)
		}
	}
}

package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, expected := range cases {
		if got := parseLevel(in); got != expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", in, got, expected)
		}
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NewNopLogger()
	l.With("component", "test").Info("discarded", "key", "value")
}

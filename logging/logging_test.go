package logging

import (
	"docs-debug/config"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"WARNING": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"":        zap.InfoLevel,
		"verbose": zap.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupHonoursLevel(t *testing.T) {
	logger := Setup(config.LogConfig{Level: "warn", Format: "json"})
	defer logger.Sync()

	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

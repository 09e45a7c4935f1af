package config_test

import (
	"testing"

	"github.com/versecue/versecue/internal/config"
)

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("LogLevel(%q).IsValid() = false, want true", l)
		}
	}
	for _, l := range []config.LogLevel{"", "verbose", "DEBUG", "trace"} {
		if l.IsValid() {
			t.Errorf("LogLevel(%q).IsValid() = true, want false", l)
		}
	}
}

func TestSourceKind_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []config.SourceKind{config.SourceStdin, config.SourceWebsocket} {
		if !s.IsValid() {
			t.Errorf("SourceKind(%q).IsValid() = false, want true", s)
		}
	}
	for _, s := range []config.SourceKind{"", "http", "kafka"} {
		if s.IsValid() {
			t.Errorf("SourceKind(%q).IsValid() = true, want false", s)
		}
	}
}

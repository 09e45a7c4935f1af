package config_test

import (
	"strings"
	"testing"

	"github.com/versecue/versecue/internal/config"
)

const validYAML = `
server:
  metrics_addr: ":9090"
  log_level: info
source:
  kind: websocket
  url: wss://stt.example.com/transcripts
detection:
  debounce_seconds: 3
  max_chapter: 150
  max_edit_distance: 2
  extra_exclusions: [amen, hallelujah]
  extra_fillers: [beloved]
bible:
  sqlite_path: /var/lib/versecue/verses.db
  translation: KJV
learned:
  path: /var/lib/versecue/learned.jsonl
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("metrics_addr=%q, want :9090", cfg.Server.MetricsAddr)
	}
	if cfg.Source.Kind != config.SourceWebsocket {
		t.Errorf("source.kind=%q, want websocket", cfg.Source.Kind)
	}
	if cfg.Detection.DebounceSeconds != 3 {
		t.Errorf("debounce_seconds=%d, want 3", cfg.Detection.DebounceSeconds)
	}
	if len(cfg.Detection.ExtraExclusions) != 2 {
		t.Errorf("extra_exclusions=%v, want 2 entries", cfg.Detection.ExtraExclusions)
	}
	if cfg.Bible.Translation != "KJV" {
		t.Errorf("translation=%q, want KJV", cfg.Bible.Translation)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_port: 8080\n"))
	if err == nil {
		t.Fatal("unknown field accepted, want decode error")
	}
}

func TestLoadFromReader_InvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad log level":       "server:\n  log_level: loud\n",
		"bad source kind":     "source:\n  kind: carrier_pigeon\n",
		"websocket sans url":  "source:\n  kind: websocket\n",
		"negative debounce":   "detection:\n  debounce_seconds: -1\n",
		"edit distance range": "detection:\n  max_edit_distance: 9\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := config.LoadFromReader(strings.NewReader(yml)); err == nil {
				t.Errorf("config accepted, want validation error")
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server:    config.ServerConfig{LogLevel: "loud"},
		Source:    config.SourceConfig{Kind: "websocket"},
		Detection: config.DetectionConfig{DebounceSeconds: -1},
	}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("Validate returned nil, want joined errors")
	}
	for _, want := range []string{"log_level", "source.url", "debounce_seconds"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("/nonexistent/versecue.yaml"); err == nil {
		t.Fatal("Load of missing file succeeded, want error")
	}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Source.Kind != "" && !cfg.Source.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("source.kind %q is invalid; valid values: stdin, websocket", cfg.Source.Kind))
	}
	if cfg.Source.Kind == SourceWebsocket && cfg.Source.URL == "" {
		errs = append(errs, errors.New("source.url is required when source.kind is websocket"))
	}

	if cfg.Detection.DebounceSeconds < 0 {
		errs = append(errs, fmt.Errorf("detection.debounce_seconds %d is negative", cfg.Detection.DebounceSeconds))
	}
	if cfg.Detection.MaxChapter < 0 {
		errs = append(errs, fmt.Errorf("detection.max_chapter %d is negative", cfg.Detection.MaxChapter))
	}
	if cfg.Detection.MaxEditDistance < 0 || cfg.Detection.MaxEditDistance > 3 {
		errs = append(errs, fmt.Errorf("detection.max_edit_distance %d is out of range [0, 3]", cfg.Detection.MaxEditDistance))
	}

	// Availability warnings — the service still runs, with reduced scope.
	if cfg.Bible.SQLitePath == "" {
		slog.Warn("bible.sqlite_path is empty; validating at chapter level only, verse text unavailable")
	}
	if cfg.Bible.SQLitePath == "" && cfg.Bible.Translation != "" {
		slog.Warn("bible.translation is set but bible.sqlite_path is empty; translation is ignored",
			"translation", cfg.Bible.Translation)
	}
	if cfg.Learned.Path == "" && cfg.Learned.PostgresDSN == "" {
		slog.Warn("no learned-alias store configured; taught corrections will not survive restarts")
	}
	if cfg.Learned.Path != "" && cfg.Learned.PostgresDSN != "" {
		slog.Warn("both learned.path and learned.postgres_dsn are set; using postgres",
			"path", cfg.Learned.Path)
	}

	return errors.Join(errs...)
}

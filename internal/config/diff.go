package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; source, bible,
// and learned-store changes require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// DetectionChanged is true when any detection tuning field changed.
	// The pipeline is rebuilt from the new config when set.
	DetectionChanged bool
	NewDetection     DetectionConfig
}

// HasChanges reports whether the diff carries anything to apply.
func (d ConfigDiff) HasChanges() bool {
	return d.LogLevelChanged || d.DetectionChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !detectionEqual(old.Detection, new.Detection) {
		d.DetectionChanged = true
		d.NewDetection = new.Detection
	}

	return d
}

func detectionEqual(a, b DetectionConfig) bool {
	return a.DebounceSeconds == b.DebounceSeconds &&
		a.MaxChapter == b.MaxChapter &&
		a.MaxEditDistance == b.MaxEditDistance &&
		slices.Equal(a.ExtraExclusions, b.ExtraExclusions) &&
		slices.Equal(a.ExtraFillers, b.ExtraFillers)
}

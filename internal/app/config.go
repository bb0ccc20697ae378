package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/idod/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "idod"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# idod configuration
# Run: idod --help

# Optional: override the SQLite database location.
# Can also be set via IDOD_DB_PATH or --db-path.
# database:
#   path: ~/.config/idod/idod.db

# image:
#   memory_cache_size: 500
#   storage_path: ~/.config/idod/screenshots

# image_optimization:
#   phash_threshold: 0.92
#   enable_content_analysis: true
#   min_interval: 2.0
#   max_images: 8

# session:
#   aggregation_interval: 1800
#   time_window_max: 7200
#   min_event_duration_seconds: 120
#   min_event_actions: 2
#   merge_time_gap_tolerance: 300
#   merge_similarity_threshold: 0.6

# cleanup:
#   cleanup_interval: 86400
#   retention_days: 30
#   image_cleanup_safety_window_minutes: 30

# language: en
`

package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Settings represents the YAML bootstrap configuration. Field names match
// the dotted settings keys named in the external-interfaces contract
// (database.path, image.*, image_optimization.*, session.*, cleanup.*,
// language); YAML nesting mirrors the dot-separated key groups.
type Settings struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Image struct {
		MemoryCacheSize  int    `yaml:"memory_cache_size"`
		StoragePath      string `yaml:"storage_path"`
	} `yaml:"image"`

	ImageOptimization struct {
		PHashThreshold       float64 `yaml:"phash_threshold"`
		EnableContentAnalysis bool    `yaml:"enable_content_analysis"`
		MinInterval          float64 `yaml:"min_interval"`
		MaxImages            int     `yaml:"max_images"`
	} `yaml:"image_optimization"`

	Session struct {
		AggregationIntervalSeconds int     `yaml:"aggregation_interval"`
		TimeWindowMin              int     `yaml:"time_window_min"`
		TimeWindowMax              int     `yaml:"time_window_max"`
		MinEventDurationSeconds    int     `yaml:"min_event_duration_seconds"`
		MinEventActions            int     `yaml:"min_event_actions"`
		MergeTimeGapTolerance      int     `yaml:"merge_time_gap_tolerance"`
		MergeSimilarityThreshold   float64 `yaml:"merge_similarity_threshold"`
	} `yaml:"session"`

	Cleanup struct {
		CleanupIntervalSeconds           int `yaml:"cleanup_interval"`
		RetentionDays                    int `yaml:"retention_days"`
		ImageCleanupSafetyWindowMinutes  int `yaml:"image_cleanup_safety_window_minutes"`
	} `yaml:"cleanup"`

	Pipeline struct {
		SegmentGapSeconds  int `yaml:"segment_gap_seconds"`
		MaxSegmentRecords  int `yaml:"max_segment_records"`
	} `yaml:"pipeline"`

	Language string `yaml:"language"`
}

// EffectiveSettings are validated runtime values with defaults applied;
// out-of-range values fall back to the documented default rather than an
// arbitrary clamp, since the source values here are daemon tuning knobs, not
// user-supplied quantities that need a ceiling.
type EffectiveSettings struct {
	DBPath                     string
	ImageMemoryCacheSize       int
	ImageStoragePath           string
	PHashThreshold             float64
	EnableContentAnalysis      bool
	MinSampleInterval          float64
	MaxImagesPerEvent          int
	AggregationInterval        int
	TimeWindowMin              int
	TimeWindowMax              int
	MinEventDurationSeconds    int
	MinEventActions            int
	MergeTimeGapTolerance      int
	MergeSimilarityThreshold   float64
	CleanupInterval            int
	RetentionDays              int
	ImageCleanupSafetyWindowMinutes int
	SegmentGapSeconds          int
	MaxSegmentRecords          int
	Language                   string
}

const (
	defaultImageMemoryCacheSize            = 500
	defaultPHashThreshold                  = 0.92
	defaultMinSampleInterval               = 2.0
	defaultMaxImagesPerEvent               = 8
	defaultAggregationIntervalSeconds      = 1800
	defaultTimeWindowMinSeconds            = 0
	defaultTimeWindowMaxSeconds            = 7200
	defaultMinEventDurationSeconds         = 120
	defaultMinEventActions                 = 2
	defaultMergeTimeGapToleranceSeconds    = 300
	defaultMergeSimilarityThreshold        = 0.6
	defaultCleanupIntervalSeconds          = 86400
	defaultRetentionDays                   = 30
	defaultImageCleanupSafetyWindowMinutes = 30
	defaultSegmentGapSeconds               = 120
	defaultMaxSegmentRecords               = 200
)

// Effective merges loaded YAML settings with documented defaults. Values
// present and non-zero in the YAML file win; everything else falls back.
func Effective(s Settings) EffectiveSettings {
	eff := EffectiveSettings{
		ImageMemoryCacheSize:            defaultImageMemoryCacheSize,
		PHashThreshold:                  defaultPHashThreshold,
		EnableContentAnalysis:           true,
		MinSampleInterval:               defaultMinSampleInterval,
		MaxImagesPerEvent:               defaultMaxImagesPerEvent,
		AggregationInterval:             defaultAggregationIntervalSeconds,
		TimeWindowMin:                   defaultTimeWindowMinSeconds,
		TimeWindowMax:                   defaultTimeWindowMaxSeconds,
		MinEventDurationSeconds:         defaultMinEventDurationSeconds,
		MinEventActions:                 defaultMinEventActions,
		MergeTimeGapTolerance:           defaultMergeTimeGapToleranceSeconds,
		MergeSimilarityThreshold:        defaultMergeSimilarityThreshold,
		CleanupInterval:                 defaultCleanupIntervalSeconds,
		RetentionDays:                   defaultRetentionDays,
		ImageCleanupSafetyWindowMinutes: defaultImageCleanupSafetyWindowMinutes,
		SegmentGapSeconds:               defaultSegmentGapSeconds,
		MaxSegmentRecords:               defaultMaxSegmentRecords,
		Language:                        "en",
	}

	eff.DBPath = s.Database.Path
	eff.ImageStoragePath = s.Image.StoragePath
	if s.Image.MemoryCacheSize > 0 {
		eff.ImageMemoryCacheSize = s.Image.MemoryCacheSize
	}
	if s.ImageOptimization.PHashThreshold > 0 {
		eff.PHashThreshold = s.ImageOptimization.PHashThreshold
	}
	eff.EnableContentAnalysis = s.ImageOptimization.EnableContentAnalysis || eff.EnableContentAnalysis
	if s.ImageOptimization.MinInterval > 0 {
		eff.MinSampleInterval = s.ImageOptimization.MinInterval
	}
	if s.ImageOptimization.MaxImages > 0 {
		eff.MaxImagesPerEvent = s.ImageOptimization.MaxImages
	}
	if s.Session.AggregationIntervalSeconds > 0 {
		eff.AggregationInterval = s.Session.AggregationIntervalSeconds
	}
	if s.Session.TimeWindowMin > 0 {
		eff.TimeWindowMin = s.Session.TimeWindowMin
	}
	if s.Session.TimeWindowMax > 0 {
		eff.TimeWindowMax = s.Session.TimeWindowMax
	}
	if s.Session.MinEventDurationSeconds > 0 {
		eff.MinEventDurationSeconds = s.Session.MinEventDurationSeconds
	}
	if s.Session.MinEventActions > 0 {
		eff.MinEventActions = s.Session.MinEventActions
	}
	if s.Session.MergeTimeGapTolerance > 0 {
		eff.MergeTimeGapTolerance = s.Session.MergeTimeGapTolerance
	}
	if s.Session.MergeSimilarityThreshold > 0 {
		eff.MergeSimilarityThreshold = s.Session.MergeSimilarityThreshold
	}
	if s.Cleanup.CleanupIntervalSeconds > 0 {
		eff.CleanupInterval = s.Cleanup.CleanupIntervalSeconds
	}
	if s.Cleanup.RetentionDays > 0 {
		eff.RetentionDays = s.Cleanup.RetentionDays
	}
	if s.Cleanup.ImageCleanupSafetyWindowMinutes > 0 {
		eff.ImageCleanupSafetyWindowMinutes = s.Cleanup.ImageCleanupSafetyWindowMinutes
	}
	if s.Pipeline.SegmentGapSeconds > 0 {
		eff.SegmentGapSeconds = s.Pipeline.SegmentGapSeconds
	}
	if s.Pipeline.MaxSegmentRecords > 0 {
		eff.MaxSegmentRecords = s.Pipeline.MaxSegmentRecords
	}
	if s.Language != "" {
		eff.Language = s.Language
	}
	return eff
}

// settingsOnce/settings/settingsErr implement the sync.Once lazy-load
// singleton for the YAML bootstrap file. dbPathOverrideMu/dbPathOverride
// implement a mutex-protected process-wide override for CLI --db-path.
// snapshotPtr implements the read-write discipline described for runtime
// settings: SetSnapshot installs a new *EffectiveSettings atomically;
// readers always observe one consistent value.
//
//nolint:gochecknoglobals // sync.Once singleton + atomic snapshot are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string

	snapshotPtr atomic.Pointer[EffectiveSettings]
)

// SetDBPathOverride sets a process-wide database path override, used by the
// --db-path CLI flag.
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads the YAML bootstrap configuration once, using the
// documented lookup order (first found wins):
//  1. ~/.config/idod/config.yaml
//  2. /etc/idod/config.yaml
//  3. ./config.yaml
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, loadErr := loadSettingsFile(filepath.Join(dir, "config.yaml")); loadErr == nil {
			settings = s
			return
		} else if !errors.Is(loadErr, os.ErrNotExist) {
			settingsErr = loadErr
			return
		}

		if s, loadErr := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "idod", "config.yaml")); loadErr == nil {
			settings = s
			return
		} else if !errors.Is(loadErr, os.ErrNotExist) {
			settingsErr = loadErr
			return
		}

		if s, loadErr := loadSettingsFile("config.yaml"); loadErr == nil {
			settings = s
			return
		} else if !errors.Is(loadErr, os.ErrNotExist) {
			settingsErr = loadErr
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// CurrentSnapshot returns the installed runtime settings snapshot, loading
// and computing it from the YAML bootstrap on first use.
func CurrentSnapshot() (*EffectiveSettings, error) {
	if p := snapshotPtr.Load(); p != nil {
		return p, nil
	}
	s, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	eff := Effective(s)
	snapshotPtr.Store(&eff)
	return &eff, nil
}

// SetSnapshot atomically installs a new runtime settings snapshot, rebuilt
// by the caller from whatever source changed (the `settings` table, a
// CLI flag). Readers observe either the old or the new snapshot in full,
// never a partially-updated one.
func SetSnapshot(eff EffectiveSettings) {
	snapshotPtr.Store(&eff)
}

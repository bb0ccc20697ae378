package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	userConfigPath := filepath.Join(home, ".config", "idod", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("database:\n  path: /tmp/from-user.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("database:\n  path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-user.db", s.Database.Path)
}

func TestLoadSettings_FallsBackToLocalConfig(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("database:\n  path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-local.db", s.Database.Path)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfigPath := filepath.Join(home, ".config", "idod", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("database: ["), 0o600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /tmp/read.db\n"), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/read.db", s.Database.Path)
}

func TestLoadSettingsFile_ReadsTuningFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "session:\n" +
		"  min_event_duration_seconds: 300\n" +
		"  min_event_actions: 5\n" +
		"cleanup:\n" +
		"  retention_days: 45\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, 300, s.Session.MinEventDurationSeconds)
	require.Equal(t, 5, s.Session.MinEventActions)
	require.Equal(t, 45, s.Cleanup.RetentionDays)
}

func TestEffective_DefaultsAndOverrides(t *testing.T) {
	eff := Effective(Settings{})
	require.Equal(t, 30, eff.RetentionDays)
	require.Equal(t, 500, eff.ImageMemoryCacheSize)
	require.Equal(t, 0.92, eff.PHashThreshold)
	require.Equal(t, 2.0, eff.MinSampleInterval)
	require.Equal(t, 8, eff.MaxImagesPerEvent)
	require.Equal(t, 120, eff.MinEventDurationSeconds)
	require.Equal(t, 2, eff.MinEventActions)
	require.Equal(t, 300, eff.MergeTimeGapTolerance)
	require.Equal(t, 0.6, eff.MergeSimilarityThreshold)

	var custom Settings
	custom.Cleanup.RetentionDays = 45
	custom.Session.MinEventActions = 5
	eff = Effective(custom)
	require.Equal(t, 45, eff.RetentionDays)
	require.Equal(t, 5, eff.MinEventActions)
}

func TestCurrentSnapshot_AndSetSnapshot(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	snap, err := CurrentSnapshot()
	require.NoError(t, err)
	require.Equal(t, 30, snap.RetentionDays)

	SetSnapshot(EffectiveSettings{RetentionDays: 90})
	snap, err = CurrentSnapshot()
	require.NoError(t, err)
	require.Equal(t, 90, snap.RetentionDays)
}

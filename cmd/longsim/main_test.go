package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	presetName, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "cruise", cfg.ProfileName())
	assert.Equal(t, 20.0, cfg.Duration)
	assert.False(t, cfg.Hardened)
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t, "--preset", "hill", "--time", "5", "--hardened"))
	require.NoError(t, err)
	assert.Equal(t, "ramp", cfg.Profile)
	assert.Equal(t, 5.0, cfg.Duration)
	assert.True(t, cfg.Hardened)
}

func TestResolveConfigThrottleFlag(t *testing.T) {
	cfg, err := resolveConfig(newTestCmd(t, "--throttle", "0.4"))
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.ProfileName())
	require.Len(t, cfg.Throttle, 1)
	assert.Equal(t, 0.4, cfg.Throttle[0].Value)
}

func TestResolveConfigFileOverridesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: coast\nduration: 3\n"), 0644))

	cfg, err := resolveConfig(newTestCmd(t, "--preset", "hill", "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "coast", cfg.Profile)
	assert.Equal(t, 3.0, cfg.Duration)
}

func TestResolveConfigFileKeepsPresetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mass.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicle:\n  mass: 2500\n"), 0644))

	cfg, err := resolveConfig(newTestCmd(t, "--preset", "hill", "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "ramp", cfg.Profile)
	assert.Equal(t, 20.0, cfg.Duration)
	assert.Equal(t, 2500.0, cfg.Vehicle.Mass)
}

func TestResolveConfigErrors(t *testing.T) {
	_, err := resolveConfig(newTestCmd(t, "--preset", "nope"))
	assert.Error(t, err)

	_, err = resolveConfig(newTestCmd(t, "--time", "-1"))
	assert.Error(t, err)
}

func TestPresetJobsUsePresetSettings(t *testing.T) {
	jobs, err := presetJobs([]string{"reference", "coast"}, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	require.NotNil(t, jobs[0].Config)
	assert.Equal(t, 80.0, jobs[0].Config.Duration)
	assert.Equal(t, 10.0, jobs[1].Config.Duration)
	assert.NotEmpty(t, jobs[0].Metrics)

	jobs, err = presetJobs([]string{"reference"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, jobs[0].Config.Duration)

	_, err = presetJobs([]string{"nope"}, 0)
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.Error(t, setupLogging("loud"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "guild")
	t.Setenv("DISCORD_ROLE_ID", "role")
	t.Setenv("TIKTOK_USERNAME", "somehost")
}

func TestLoad_MissingRequiredSettings(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_GUILD_ID", "")
	t.Setenv("DISCORD_ROLE_ID", "")
	t.Setenv("TIKTOK_USERNAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
	assert.Contains(t, err.Error(), "TIKTOK_USERNAME")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Teamherz", cfg.GiftNames)
	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.InactivityWindow)
	assert.Equal(t, 30*time.Second, cfg.VerifyCooldown)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "rolegate", cfg.OtelServiceName)
}

func TestLoad_DurationsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWEEP_INTERVAL", "30m")
	t.Setenv("INACTIVITY_WINDOW", "72h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 72*time.Hour, cfg.InactivityWindow)
}

func TestGiftNameList_TrimsAndLowercases(t *testing.T) {
	cfg := &Config{GiftNames: "Teamherz, Rose , GALAXY,,"}
	assert.Equal(t, []string{"teamherz", "rose", "galaxy"}, cfg.GiftNameList())
}

func TestLoad_RejectsNonPositiveWindows(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWEEP_INTERVAL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWEEP_INTERVAL")
}

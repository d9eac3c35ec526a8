package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TOKEN", "bot-token")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "bot-token", cfg.Token)
	require.Equal(t, "data/bot.db", cfg.DatabasePath)
	require.Equal(t, "voice-notes", cfg.DownloadDir)
	require.Equal(t, "https://api.typefully.com/v1/", cfg.TypefullyBaseURL)
	require.Equal(t, 10*time.Second, cfg.PollTimeout)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("TOKEN", "")
	os.Unsetenv("TOKEN")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN", "bot-token")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("OPENAI_API_KEY", "fallback")
	t.Setenv("POLL_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	require.Equal(t, "fallback", cfg.FallbackOpenAIKey)
	require.Equal(t, 30*time.Second, cfg.PollTimeout)
}

func TestLoadProfilesMissingFileUsesDefaults(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", profiles.CompletionModel)
	require.NotEmpty(t, profiles.Instruction(true))
	require.NotEmpty(t, profiles.Instruction(false))
	require.NotEqual(t, profiles.Instruction(true), profiles.Instruction(false))
}

func TestLoadProfilesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := "completion_model: gpt-4o\ninstructions:\n  rewrite: punch it up\n  format: just format\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", profiles.CompletionModel)
	require.Equal(t, "punch it up", profiles.Instruction(true))
	require.Equal(t, "just format", profiles.Instruction(false))
}

func TestLoadProfilesMissingInstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := "instructions:\n  rewrite: punch it up\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := LoadProfiles(path)
	require.ErrorContains(t, err, "format")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Data:     DataConfig{BasePath: "/tmp/listenup-player"},
		Playback: PlaybackConfig{DefaultSleepTimerMin: 15},
		Download: DownloadConfig{PollInterval: time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "empty environment", mutate: func(c *Config) { c.App.Environment = "" }, wantErr: true},
		{name: "unknown environment", mutate: func(c *Config) { c.App.Environment = "qa" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logger.Level = "verbose" }, wantErr: true},
		{name: "empty data path", mutate: func(c *Config) { c.Data.BasePath = "" }, wantErr: true},
		{name: "sleep timer too small", mutate: func(c *Config) { c.Playback.DefaultSleepTimerMin = 0 }, wantErr: true},
		{name: "sleep timer too large", mutate: func(c *Config) { c.Playback.DefaultSleepTimerMin = 481 }, wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.Download.PollInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("PLAYER_TEST_KEY", "from-env")

	// Flag beats env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "PLAYER_TEST_KEY", "default"))

	// Env beats default.
	assert.Equal(t, "from-env", getConfigValue("", "PLAYER_TEST_KEY", "default"))

	// Default when nothing else is set.
	assert.Equal(t, "default", getConfigValue("", "PLAYER_TEST_KEY_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("PLAYER_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "PLAYER_TEST_INT", 7))

	t.Setenv("PLAYER_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getIntConfigValue("", "PLAYER_TEST_INT", 7))

	assert.Equal(t, 7, getIntConfigValue("", "PLAYER_TEST_INT_UNSET", 7))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment line\n\nPLAYER_ENVFILE_A=hello\nPLAYER_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("PLAYER_ENVFILE_A")
		os.Unsetenv("PLAYER_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("PLAYER_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("PLAYER_ENVFILE_B"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOT A PAIR\n"), 0o600))

	assert.Error(t, loadEnvFile(envPath))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	cfg := new(Config)

	err := Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultStoreBackend, cfg.StoreBackend)
	require.Equal(t, DefaultStateFilename, cfg.StateFile)
	require.Equal(t, DefaultNotifierTimeout, cfg.NotifierTimeout)
	require.Equal(t, DefaultWindowStart, cfg.WindowStart)
	require.Equal(t, DefaultWindowEnd, cfg.WindowEnd)

	// Bad listen address.
	cfg = &Config{ListenAddress: "bad:address"}

	err = Validate(cfg)
	require.Error(t, err)

	// Unknown backend.
	cfg = &Config{StoreBackend: "postgres"}

	err = Validate(cfg)
	require.ErrorIs(t, err, errUnknownStoreBackend)

	// Redis backend requires an address.
	cfg = &Config{StoreBackend: "redis"}

	err = Validate(cfg)
	require.ErrorIs(t, err, errRedisAddressRequired)

	// Redis backend with an address is fine and gets a default key.
	cfg = &Config{
		StoreBackend: "redis",
		Redis:        RedisConfig{Address: "127.0.0.1:6379"},
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultRedisKey, cfg.Redis.Key)

	// Bad notifier URL.
	cfg = &Config{NotifierBaseURL: "not a url"}

	err = Validate(cfg)
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ListenAddress:   "127.0.0.1:5000",
		ServerURL:       "http://127.0.0.1:5000",
		NotifierTimeout: 15 * time.Second,
		CheckInterval:   time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.ServerURL, loaded.ServerURL)
	require.Equal(t, cfg.NotifierTimeout, loaded.NotifierTimeout)
	require.Equal(t, cfg.CheckInterval, loaded.CheckInterval)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

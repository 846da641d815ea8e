package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesOnlySetFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "server.hcl")
	body := `
addr = ":9999"
min_players = 3
action_timeout_seconds = 45
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.MinPlayers)
	assert.Equal(t, 45*time.Second, cfg.ActionTimeout)

	// Everything not set in the file keeps its default.
	def := DefaultConfig()
	assert.Equal(t, def.MaxPlayers, cfg.MaxPlayers)
	assert.Equal(t, def.LobbyDebounce, cfg.LobbyDebounce)
	assert.Equal(t, def.StartingStack, cfg.StartingStack)
	assert.Equal(t, def.BlindSchedule, cfg.BlindSchedule)
}

func TestLoadConfig_BlindLevelBlocksOverrideSchedule(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "server.hcl")
	body := `
blind_level {
  hand_number = 1
  small_blind = 25
  big_blind   = 50
}
blind_level {
  hand_number = 5
  small_blind = 50
  big_blind   = 100
}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.BlindSchedule, 2)
	assert.Equal(t, 25, cfg.BlindSchedule[0].SmallBlind)
	assert.Equal(t, 100, cfg.BlindSchedule[1].BigBlind)
}

func TestLoadConfig_RejectsMalformedHCL(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte("not = valid = hcl ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"min below 2", func(c *Config) { c.MinPlayers = 1 }, true},
		{"max above 9", func(c *Config) { c.MaxPlayers = 10 }, true},
		{"min exceeds max", func(c *Config) { c.MinPlayers, c.MaxPlayers = 6, 5 }, true},
		{"zero action timeout", func(c *Config) { c.ActionTimeout = 0 }, true},
		{"zero starting stack", func(c *Config) { c.StartingStack = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

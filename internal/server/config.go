package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/nlhe/pokerserver/internal/tournament"
)

// BlindLevelConfig is one HCL blind_level block.
type BlindLevelConfig struct {
	HandNumber int `hcl:"hand_number"`
	SmallBlind int `hcl:"small_blind"`
	BigBlind   int `hcl:"big_blind"`
}

// FileConfig is the decoded shape of an optional HCL server config
// file. Every field is optional; anything left unset keeps its
// DefaultConfig value.
type FileConfig struct {
	Addr           string             `hcl:"addr,optional"`
	MinPlayers     int                `hcl:"min_players,optional"`
	MaxPlayers     int                `hcl:"max_players,optional"`
	ActionTimeoutS int                `hcl:"action_timeout_seconds,optional"`
	LobbyDebounceS int                `hcl:"lobby_debounce_seconds,optional"`
	StartingStack  int                `hcl:"starting_stack,optional"`
	BlindLevels    []BlindLevelConfig `hcl:"blind_level,block"`
}

// Config is the resolved, validated server configuration, merging
// DefaultConfig with any values an HCL file overrides.
type Config struct {
	Addr          string
	MinPlayers    int
	MaxPlayers    int
	ActionTimeout time.Duration
	LobbyDebounce time.Duration
	StartingStack int
	BlindSchedule []tournament.BlindLevel
}

// DefaultConfig returns the values spec.md fixes when no config file
// is supplied: 2-9 players, 30s action timeout, 5s lobby debounce,
// 10,000 starting stack, and the standard blind schedule.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8765",
		MinPlayers:    2,
		MaxPlayers:    9,
		ActionTimeout: 30 * time.Second,
		LobbyDebounce: 5 * time.Second,
		StartingStack: tournament.StartingStack,
		BlindSchedule: tournament.DefaultBlindSchedule,
	}
}

// LoadConfig reads an optional HCL config file at path, overriding
// DefaultConfig's fields with whatever it sets. A missing path (empty
// string, or a file that doesn't exist) is not an error — it just
// means "use the defaults".
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("server: parse config %s: %w", path, diags)
	}

	var fc FileConfig
	if diags := gohcl.DecodeBody(f.Body, nil, &fc); diags.HasErrors() {
		return cfg, fmt.Errorf("server: decode config %s: %w", path, diags)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.MinPlayers != 0 {
		cfg.MinPlayers = fc.MinPlayers
	}
	if fc.MaxPlayers != 0 {
		cfg.MaxPlayers = fc.MaxPlayers
	}
	if fc.ActionTimeoutS != 0 {
		cfg.ActionTimeout = time.Duration(fc.ActionTimeoutS) * time.Second
	}
	if fc.LobbyDebounceS != 0 {
		cfg.LobbyDebounce = time.Duration(fc.LobbyDebounceS) * time.Second
	}
	if fc.StartingStack != 0 {
		cfg.StartingStack = fc.StartingStack
	}
	if len(fc.BlindLevels) > 0 {
		schedule := make([]tournament.BlindLevel, len(fc.BlindLevels))
		for i, lvl := range fc.BlindLevels {
			schedule[i] = tournament.BlindLevel{
				HandNumber: lvl.HandNumber,
				SmallBlind: lvl.SmallBlind,
				BigBlind:   lvl.BigBlind,
			}
		}
		cfg.BlindSchedule = schedule
	}

	return cfg, nil
}

// Validate reports whether cfg's values are internally consistent.
func (c Config) Validate() error {
	if c.MinPlayers < 2 {
		return fmt.Errorf("server: min_players must be at least 2")
	}
	if c.MaxPlayers > 9 {
		return fmt.Errorf("server: max_players must be at most 9")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("server: min_players must not exceed max_players")
	}
	if c.ActionTimeout <= 0 {
		return fmt.Errorf("server: action_timeout must be positive")
	}
	if c.StartingStack <= 0 {
		return fmt.Errorf("server: starting_stack must be positive")
	}
	return nil
}

package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/game"
	"elemental_chess/internal/opponent"
)

func parseMap(t *testing.T, vars map[string]string) Config {
	t.Helper()
	cfg, err := parse(env.Options{Prefix: envPrefix, Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parseMap(t, map[string]string{})
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 600*time.Millisecond, cfg.ThinkDelay)
	assert.Equal(t, 5*time.Second, cfg.WatchdogTimeout)
	require.NoError(t, cfg.Validate())

	color, diff, err := cfg.AI()
	require.NoError(t, err)
	assert.Equal(t, game.Black, color)
	assert.Equal(t, opponent.Medium, diff)
}

func TestEnvAndFlags(t *testing.T) {
	cfg := parseMap(t, map[string]string{
		"ECHESS_ADDR":          ":9000",
		"ECHESS_AI_DIFFICULTY": "hard",
		"ECHESS_THINK_DELAY":   "1s",
		"ECHESS_LOG_DEV":       "true",
	})
	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.LogDev)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-addr", ":7000", "-ai-color", "none"}))

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, time.Second, cfg.ThinkDelay)
	assert.False(t, cfg.AIEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = " " }},
		{"bad colour", func(c *Config) { c.AIColor = "green" }},
		{"bad difficulty", func(c *Config) { c.AIDifficulty = "impossible" }},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }},
		{"watchdog below delay", func(c *Config) { c.WatchdogTimeout = c.ThinkDelay }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parseMap(t, map[string]string{})
			tt.mut(&cfg)
			var invalid *InvalidConfig
			assert.ErrorAs(t, cfg.Validate(), &invalid)
		})
	}
}

func TestLoadBalanceOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fire": {"queen": {"cooldown": 7}, "pawn": {"range": 2}}}`), 0o644))

	table, used, err := LoadBalance(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	def := game.DefaultBalance()
	queen := table.For(game.ElementFire, game.Queen)
	assert.Equal(t, 7, queen.Cooldown)
	assert.Equal(t, def.For(game.ElementFire, game.Queen).Duration, queen.Duration)
	assert.Equal(t, 2, table.For(game.ElementFire, game.Pawn).Range)
	assert.Equal(t, def.For(game.ElementIce, game.Rook), table.For(game.ElementIce, game.Rook))
}

func TestLoadBalanceRejects(t *testing.T) {
	tests := map[string]string{
		"unknown element":  `{"water": {"pawn": {"range": 1}}}`,
		"unknown piece":    `{"fire": {"dragon": {"range": 1}}}`,
		"invalid duration": `{"ice": {"rook": {"duration": 0}}}`,
		"not json":         `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "balance.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			table, _, err := LoadBalance(path)
			var invalid *InvalidConfig
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, game.DefaultBalance(), table)
		})
	}

	_, _, err := LoadBalance(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

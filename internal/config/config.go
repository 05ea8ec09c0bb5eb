// Package config loads the server settings from ECHESS_* environment
// variables and command-line flags, and the optional balance override file.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"elemental_chess/internal/game"
	"elemental_chess/internal/opponent"
	"elemental_chess/internal/shared"
)

const envPrefix = "ECHESS_"

// AINone disables the computer opponent.
const AINone = "none"

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	AIColor         string        `env:"AI_COLOR" envDefault:"black"`
	AIDifficulty    string        `env:"AI_DIFFICULTY" envDefault:"medium"`
	ThinkDelay      time.Duration `env:"THINK_DELAY" envDefault:"600ms"`
	WatchdogTimeout time.Duration `env:"WATCHDOG_TIMEOUT" envDefault:"5s"`
	SettleDelay     time.Duration `env:"SETTLE_DELAY" envDefault:"0s"`
	LogDev          bool          `env:"LOG_DEV"`
	BalanceFile     string        `env:"BALANCE_FILE"`
}

// FromEnv parses the process environment.
func FromEnv() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// BindFlags registers one flag per setting, defaulting to the current value,
// so parsed flags override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.AIColor, "ai-color", c.AIColor, "colour played by the computer (white, black or none)")
	fs.StringVar(&c.AIDifficulty, "ai-difficulty", c.AIDifficulty, "easy, medium or hard")
	fs.DurationVar(&c.ThinkDelay, "think-delay", c.ThinkDelay, "pause before the computer acts")
	fs.DurationVar(&c.WatchdogTimeout, "watchdog-timeout", c.WatchdogTimeout, "reset a think cycle stalled this long")
	fs.DurationVar(&c.SettleDelay, "settle-delay", c.SettleDelay, "delay after each relocation step")
	fs.BoolVar(&c.LogDev, "log-dev", c.LogDev, "human-readable development logs")
	fs.StringVar(&c.BalanceFile, "balance", c.BalanceFile, "balance override file (default: searched in the XDG config dirs)")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return &InvalidConfig{"empty listen address"}
	}
	if _, _, err := c.AI(); err != nil {
		return err
	}
	if c.ThinkDelay < 0 || c.SettleDelay < 0 {
		return &InvalidConfig{"delays must not be negative"}
	}
	if c.WatchdogTimeout <= c.ThinkDelay {
		return &InvalidConfig{fmt.Sprintf("watchdog timeout %s must exceed think delay %s", c.WatchdogTimeout, c.ThinkDelay)}
	}
	return nil
}

// AI returns the opponent's colour and difficulty; both are zero when the
// opponent is disabled.
func (c *Config) AI() (color game.Color, difficulty opponent.Difficulty, err error) {
	if strings.EqualFold(strings.TrimSpace(c.AIColor), AINone) {
		return 0, "", nil
	}
	color, ok := shared.ParseColor(c.AIColor)
	if !ok {
		return 0, "", &InvalidConfig{fmt.Sprintf("unknown ai colour %q", c.AIColor)}
	}
	difficulty, err = opponent.ParseDifficulty(c.AIDifficulty)
	if err != nil {
		return 0, "", &InvalidConfig{err.Error()}
	}
	return color, difficulty, nil
}

// AIEnabled reports whether a computer opponent should be started.
func (c *Config) AIEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.AIColor), AINone)
}

// Command server runs an elemental chess match behind a JSON API. Both sides
// must be drafted through /api/config before the first move.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"elemental_chess/internal/config"
	"elemental_chess/internal/game"
	_ "elemental_chess/internal/game/abilities"
	"elemental_chess/internal/httpx"
	"elemental_chess/internal/opponent"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	balance, balancePath, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		logger.Fatal("balance", zap.Error(err))
	}
	if balancePath != "" {
		logger.Info("balance overrides loaded", zap.String("path", balancePath))
	}

	eng := game.NewEngine(
		game.WithLogger(logger.Named("engine")),
		game.WithBalance(balance),
		game.WithSettleDelay(cfg.SettleDelay),
		game.WithWaiter(game.ClockWaiter{}),
	)

	opts := []httpx.Option{httpx.WithLogger(logger)}
	if cfg.AIEnabled() {
		color, difficulty, _ := cfg.AI()
		opts = append(opts, httpx.WithOpponent(color,
			opponent.WithDifficulty(difficulty),
			opponent.WithThinkDelay(cfg.ThinkDelay),
			opponent.WithWatchdogTimeout(cfg.WatchdogTimeout),
		))
		logger.Info("computer opponent enabled",
			zap.Stringer("color", color),
			zap.String("difficulty", string(difficulty)))
	}
	srv := httpx.NewServer(eng, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.RunOpponent(ctx, httpx.DefaultTickInterval)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdown); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := srv.Listen(cfg.Addr); err != nil {
		logger.Fatal("http", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/nlhe/pokerserver/internal/server"
)

type CLI struct {
	Addr           string `kong:"help='Listen address; overrides the config file addr (default :8765)'"`
	Debug          bool   `kong:"help='Enable debug logging'"`
	Config         string `kong:"help='Optional HCL config file overriding defaults'"`
	Seed           *int64 `kong:"help='Deterministic RNG seed (default: current time)'"`
	Monitor        bool   `kong:"help='Print hand-by-hand progress to stderr'"`
	ShutdownGrace  time.Duration `kong:"name='shutdown-grace',default='5s',help='Time allowed for graceful shutdown'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokerserver"),
		kong.Description("No-limit hold'em tournament server for bot clients"),
		kong.UsageOnError(),
	)

	logLevel := log.InfoLevel
	if cli.Debug {
		logLevel = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           logLevel,
		ReportTimestamp: true,
	})

	cfg, err := server.LoadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	if err := cfg.Validate(); err != nil {
		kctx.FatalIfErrorf(err)
	}

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	var monitor server.HandMonitor = server.NullHandMonitor{}
	if cli.Monitor {
		monitor = server.NewPrettyPrintMonitor(os.Stderr)
	}

	srv := server.NewServer(cfg, logger, monitor, rng)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	addr := cfg.Addr
	if cli.Addr != "" {
		addr = cli.Addr
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "seed", seed,
			"min_players", cfg.MinPlayers, "max_players", cfg.MaxPlayers)
		serverErr <- srv.Start(addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			kctx.FatalIfErrorf(err)
		}
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownGrace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", "error", err)
		} else {
			logger.Info("server shutdown complete")
		}
	}
}

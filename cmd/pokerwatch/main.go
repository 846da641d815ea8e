package main

import (
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/nlhe/pokerserver/internal/server"
)

// pokerwatch runs the same tournament server as pokerserver, but
// renders hand progress to an interactive operator console instead of
// plain log lines. It is ambient ops tooling: it consumes the
// Tournament Manager's existing hand-complete notifications and never
// touches the bot wire protocol.
type CLI struct {
	Addr   string `kong:"help='Listen address; overrides the config file addr (default :8765)'"`
	Config string `kong:"help='Optional HCL config file overriding defaults'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed (default: current time)'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokerwatch"),
		kong.Description("No-limit hold'em tournament server with an operator console"),
		kong.UsageOnError(),
	)

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

	// The TUI owns stdout/stderr for its own rendering, so server
	// logging is silenced rather than interleaved with the console.
	logger := log.NewWithOptions(io.Discard, log.Options{})
	if termenv.EnvColorProfile() != termenv.Ascii {
		logger.SetColorProfile(termenv.TrueColor)
	}

	monitor := server.NewTUIMonitor()
	srv := server.NewServer(cfg, logger, monitor, rng)

	addr := cfg.Addr
	if cli.Addr != "" {
		addr = cli.Addr
	}

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start(addr) }()

	if err := monitor.Run(); err != nil {
		os.Exit(1)
	}
}

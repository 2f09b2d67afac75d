package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/cmd/saltboot/commands"
	"github.com/saltboot/saltboot/pkg/lifecycle"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	// Minimal logger until the flags are parsed; the root command
	// installs the configured one.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Create context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received interrupt signal, shutting down...")
		cancel()
	}()

	if err := commands.Execute(ctx, Version, Commit, BuildDate); err != nil {
		code := lifecycle.ExitCode(err)
		log.Error().Err(err).
			Str("class", string(lifecycle.ClassOf(err))).
			Int("exit_code", code).
			Msg("Bootstrap failed")
		os.Exit(code)
	}
}

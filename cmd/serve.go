package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/rolesplit/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the upload server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.useConfig(cmd); err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if dir := cmd.String("output"); dir != "" {
		r.config.Output.Directory = dir
		r.config.Output.SFTP.Enabled = false
	}

	engine, err := r.newEngine(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := r.logger.With("component", "server")
	router := server.New(cfg, engine, logger)
	return server.ListenAndServe(ctx, cfg, router, logger)
}

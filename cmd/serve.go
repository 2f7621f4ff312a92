package main

import (
	"context"
	"fmt"

	"github.com/Sidd1721986/Elite-App/internal/server"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the mock marketplace API with the demo accounts.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	market := server.NewMarketplace(server.MarketplaceOpts{})
	if !cmd.Bool("empty") {
		if err := market.Seed(server.DefaultSeed); err != nil {
			return fmt.Errorf("failed to seed accounts: %w", err)
		}
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	srv := server.New(cfg.Addr(), server.NewRouter(market, logger), logger)

	logger.Info("serving marketplace API", "addr", cfg.Addr())
	if !cmd.Bool("empty") {
		for _, acct := range server.DefaultSeed {
			logger.Info("demo account", "email", acct.Email, "password", acct.Password, "role", acct.Role)
		}
	}
	return srv.Run(ctx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the mock marketplace API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "Start without the demo accounts",
			},
		},
		Action: r.Serve,
	}
}

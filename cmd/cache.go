package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ClearCache drops the saved jobs snapshot and the response cache. The session is kept.
func (r *Runner) ClearCache(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	r.client.ClearCache()
	if err := r.jobs.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear jobs snapshot: %w", err)
	}

	r.logger.Info("cleared local cache")
	return r.writePlain("✓ Cleared saved jobs\n")
}

// cacheCommand manages locally saved data
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage locally saved data",
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Remove the saved jobs snapshot",
				Action: r.ClearCache,
			},
		},
	}
}

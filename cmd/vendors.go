package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/urfave/cli/v3"
)

func userID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	return id, nil
}

func (r *Runner) writeVendors(cmd *cli.Command, vendors []models.User, empty string) error {
	if cmd.Bool("json") {
		return r.writeJSON(vendors, cmd.Bool("pretty"))
	}
	if len(vendors) == 0 {
		return r.writePlain("%s\n", empty)
	}
	for _, v := range vendors {
		if err := r.writePlain("%-38s %-24s %s\n", v.ID, v.Name, v.Email); err != nil {
			return err
		}
	}
	return nil
}

// PendingVendors lists vendor accounts waiting for approval.
func (r *Runner) PendingVendors(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}
	vendors, err := r.auth.PendingVendors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending vendors: %w", err)
	}
	return r.writeVendors(cmd, vendors, "No vendors awaiting approval")
}

// ApprovedVendors lists vendors that can be assigned jobs.
func (r *Runner) ApprovedVendors(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}
	vendors, err := r.auth.ApprovedVendors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list approved vendors: %w", err)
	}
	return r.writeVendors(cmd, vendors, "No approved vendors")
}

// ApproveVendor approves a vendor, or revokes approval with --reject.
func (r *Runner) ApproveVendor(ctx context.Context, cmd *cli.Command) error {
	id, err := userID(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	approved := !cmd.Bool("reject")
	if err := r.auth.UpdateUserStatus(ctx, id, approved); err != nil {
		return fmt.Errorf("failed to update vendor %s: %w", id, err)
	}
	if approved {
		return r.writePlain("✓ Approved vendor %s\n", id)
	}
	return r.writePlain("✓ Revoked approval for vendor %s\n", id)
}

// RemoveVendor deletes a vendor account.
func (r *Runner) RemoveVendor(ctx context.Context, cmd *cli.Command) error {
	id, err := userID(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}
	if err := r.auth.RemoveVendor(ctx, id); err != nil {
		return fmt.Errorf("failed to remove vendor %s: %w", id, err)
	}
	return r.writePlain("✓ Removed vendor %s\n", id)
}

func vendorsCommand(r *Runner) *cli.Command {
	userArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}
	return &cli.Command{
		Name:  "vendors",
		Usage: "Review and manage vendor accounts (admin)",
		Commands: []*cli.Command{
			{
				Name:   "pending",
				Usage:  "List vendors awaiting approval",
				Flags:  jobOutputFlags(),
				Action: r.PendingVendors,
			},
			{
				Name:   "approved",
				Usage:  "List approved vendors",
				Flags:  jobOutputFlags(),
				Action: r.ApprovedVendors,
			},
			{
				Name:      "approve",
				Usage:     "Approve a vendor",
				Arguments: userArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reject",
						Usage: "Revoke approval instead",
					},
				},
				Action: r.ApproveVendor,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Delete a vendor account",
				Arguments: userArg(),
				Action:    r.RemoveVendor,
			},
		},
	}
}

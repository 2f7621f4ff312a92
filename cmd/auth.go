package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/urfave/cli/v3"
)

var roles = []models.UserRole{
	models.RoleAdmin,
	models.RoleVendor,
	models.RoleCustomer,
	models.RoleRealtor,
	models.RolePropertyManager,
	models.RoleBusiness,
	models.RoleHomeOwner,
	models.RoleLandlord,
	models.RoleOther,
}

// parseRole matches name against the known roles, ignoring case.
func parseRole(name string) (models.UserRole, error) {
	for _, role := range roles {
		if strings.EqualFold(name, string(role)) {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, name)
}

// Login signs in and persists the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	role, err := parseRole(cmd.String("role"))
	if err != nil {
		return err
	}
	if err := r.session(ctx); err != nil {
		return err
	}

	user, err := r.auth.Login(ctx, models.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Signed in as %s <%s> (%s)\n", user.Name, user.Email, user.Role)
}

// Logout removes the persisted session and the jobs snapshot.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}
	if err := r.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if err := r.jobs.Clear(ctx); err != nil {
		r.logger.Warn("failed to clear jobs snapshot", "error", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// Status reports the persisted session.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	user := r.auth.User()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": r.auth.IsAuthenticated(ctx),
			"user":          user,
		}, cmd.Bool("pretty"))
	}

	if !r.auth.IsAuthenticated(ctx) {
		return r.writePlain("Not signed in\n")
	}
	if user == nil {
		return r.writePlain("Signed in (no user snapshot)\n")
	}
	status := "approved"
	if user.IsApproved != nil && !*user.IsApproved {
		status = "pending approval"
	}
	return r.writePlain("Signed in as %s <%s>\n  Role:   %s\n  Status: %s\n", user.Name, user.Email, user.Role, status)
}

// Signup registers a new account. It does not sign in.
func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	role, err := parseRole(cmd.String("role"))
	if err != nil {
		return err
	}
	if role == models.RoleAdmin {
		return fmt.Errorf("%w: admin accounts cannot be registered", shared.ErrInvalidArgument)
	}
	if err := r.session(ctx); err != nil {
		return err
	}

	user, err := r.auth.Signup(ctx, models.SignupRequest{
		Name:      cmd.String("name"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		Role:      role,
		Address:   cmd.String("address"),
		Phone:     cmd.String("phone"),
		RoleOther: cmd.String("role-other"),
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	if user == nil {
		return r.writePlain("✓ Registered %s\n", cmd.String("email"))
	}
	if err := r.writePlain("✓ Registered %s <%s> (%s)\n", user.Name, user.Email, user.Role); err != nil {
		return err
	}
	if role == models.RoleVendor {
		return r.writePlain("Vendor accounts must be approved by an admin before signing in.\n")
	}
	return nil
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out and register accounts",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
						Sources:  cli.EnvVars("ELITE_PASSWORD"),
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Role to sign in as (Admin, Vendor, Customer, ...)",
						Value: string(models.RoleCustomer),
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the user as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.Login,
			},
			{
				Name:   "logout",
				Usage:  "Remove the persisted session",
				Action: r.Logout,
			},
			{
				Name:  "status",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.Status,
			},
			{
				Name:  "signup",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
						Sources:  cli.EnvVars("ELITE_PASSWORD"),
					},
					&cli.StringFlag{Name: "role", Usage: "Account role", Value: string(models.RoleHomeOwner)},
					&cli.StringFlag{Name: "role-other", Usage: "Role description when --role is Other"},
					&cli.StringFlag{Name: "address", Usage: "Street address"},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
				},
				Action: r.Signup,
			},
		},
	}
}

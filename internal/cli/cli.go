// Package cli holds the courierctl maintenance commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"courier_api/internal/config"
	"courier_api/internal/database"
	"courier_api/internal/migrations"
	"courier_api/internal/repository"
	"courier_api/internal/services"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd assembles courierctl.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "courierctl",
		Short: "Maintenance commands for the courier API",
		Long: `courierctl prepares the courier API database.

It reads the same environment (and .env file) as the server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(SeedAdminCmd())
	return rootCmd
}

// MigrateCmd brings the schema up to date.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending migrations.

Postgres databases run the embedded SQL migrations. SQLite databases are
created from the models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			out := cmd.OutOrStdout()

			if cfg.DatabaseDriver == database.DriverPostgres {
				if err := migrations.RunMigrations(cfg.DatabaseURL, zap.NewNop()); err != nil {
					return err
				}
				printStatus(out, "OK", "postgres migrations applied")
				return nil
			}

			db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, zap.NewNop())
			if err != nil {
				return err
			}
			defer database.Close(db)
			printStatus(out, "OK", fmt.Sprintf("%s schema ready", cfg.DatabaseDriver))
			return nil
		},
	}
}

// SeedAdminCmd creates the admin account unless one with that email exists.
func SeedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin user",
		Long: `Create the admin user from ADMIN_EMAIL, ADMIN_USERNAME and ADMIN_PASSWORD.

Flags override the environment. An existing user with the same email is left untouched.`,
		RunE: runSeedAdmin,
	}

	cmd.Flags().String("email", "", "Admin email (default $ADMIN_EMAIL)")
	cmd.Flags().String("username", "", "Admin username (default $ADMIN_USERNAME)")
	cmd.Flags().String("password", "", "Admin password (default $ADMIN_PASSWORD)")
	return cmd
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	out := cmd.OutOrStdout()

	email := flagOr(cmd, "email", cfg.AdminEmail)
	username := flagOr(cmd, "username", cfg.AdminUsername)
	password := flagOr(cmd, "password", cfg.AdminPassword)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}

	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, zap.NewNop())
	if err != nil {
		return err
	}
	defer database.Close(db)

	// seeding never touches sessions
	auth := services.NewAuthService(repository.NewUserRepository(db), nil, 0, zap.NewNop())

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	created, err := auth.SeedAdmin(ctx, email, username, password)
	if err != nil {
		return err
	}
	if created {
		printStatus(out, "CREATED", email)
	} else {
		printStatus(out, "EXISTS", email)
	}
	return nil
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if value, _ := cmd.Flags().GetString(name); value != "" {
		return value
	}
	return fallback
}

func printStatus(out io.Writer, status, detail string) {
	c := color.New(color.FgGreen)
	if status == "EXISTS" {
		c = color.New(color.FgBlue)
	}
	fmt.Fprintf(out, "%s %s\n", c.Sprintf("%-7s", status), detail)
}

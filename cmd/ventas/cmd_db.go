package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ventas/database/seeders"
	"github.com/shashiranjanraj/ventas/internal/server"
	"github.com/shashiranjanraj/ventas/pkg/migration"
)

// withApp boots config, logging and the database around fn.
func withApp(cmd *cobra.Command, fn func(app *server.App) error) error {
	app, err := server.Boot(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

// ventas migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *server.App) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
			return app.Migrate(cmd.OutOrStdout())
		})
	},
}

// ventas migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *server.App) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
			return migration.New(app.DB, cmd.OutOrStdout()).Rollback()
		})
	},
}

// ventas migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *server.App) error {
			return migration.New(app.DB, cmd.OutOrStdout()).Status()
		})
	},
}

// ventas seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo customers, products and sales",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *server.App) error {
			if err := app.Migrate(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(cmd.Context(), app.DB, cmd.OutOrStdout())
		})
	},
}

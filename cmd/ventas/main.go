// Command ventas runs the sales API and its maintenance tasks.
//
//	ventas serve              # start the HTTP server
//	ventas migrate            # run pending migrations
//	ventas migrate:rollback   # undo the last batch
//	ventas migrate:status
//	ventas seed               # load the demo catalogue
//	ventas route:list
//	ventas report top-products --limit 10
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ventas",
	Short:         "Sales API: customers, products, sales and rankings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(reportCmd)
}

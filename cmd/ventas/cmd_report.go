package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ventas/app/repositories"
	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/config"
	"github.com/shashiranjanraj/ventas/internal/server"
)

var (
	reportLimit string
	reportCSV   bool
)

// ventas report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a sales ranking",
}

var topProductsCmd = &cobra.Command{
	Use:   "top-products",
	Short: "Best-selling products by units sold",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReports(cmd, func(reports *services.ReportService, limit int) error {
			rows, err := reports.TopProducts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if reportCSV {
				return writeCSV(cmd.OutOrStdout(), func() ([]byte, error) { return services.ProductRankingCSV(rows) })
			}
			return printProducts(cmd.OutOrStdout(), rows)
		})
	},
}

var topCustomersCmd = &cobra.Command{
	Use:   "top-customers",
	Short: "Customers ranked by the sum of their sale totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReports(cmd, func(reports *services.ReportService, limit int) error {
			rows, err := reports.TopCustomers(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if reportCSV {
				return writeCSV(cmd.OutOrStdout(), func() ([]byte, error) { return services.CustomerRankingCSV(rows) })
			}
			return printCustomers(cmd.OutOrStdout(), rows)
		})
	},
}

func init() {
	reportCmd.PersistentFlags().StringVarP(&reportLimit, "limit", "l", "", "number of rows (default REPORT_DEFAULT_LIMIT)")
	reportCmd.PersistentFlags().BoolVar(&reportCSV, "csv", false, "print CSV instead of a table")
	reportCmd.AddCommand(topProductsCmd)
	reportCmd.AddCommand(topCustomersCmd)
}

func withReports(cmd *cobra.Command, fn func(*services.ReportService, int) error) error {
	return withApp(cmd, func(app *server.App) error {
		reports := services.NewReportService(app.DB, nil, config.ReportDefaultLimit())
		limit, err := reports.ParseLimit(reportLimit)
		if err != nil {
			return err
		}
		return fn(reports, limit)
	})
}

func writeCSV(w io.Writer, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printProducts(out io.Writer, rows []repositories.ProductRanking) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tPRODUCTO\tUNIDADES\tINGRESOS\t")
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", i+1, r.Name, strconv.FormatInt(r.UnitsSold, 10), r.Revenue.StringFixed(2))
	}
	return w.Flush()
}

func printCustomers(out io.Writer, rows []repositories.CustomerRanking) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tCLIENTE\tVENTAS\tMONTO\t")
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", i+1, r.Name, strconv.FormatInt(r.SaleCount, 10), r.Revenue.StringFixed(2))
	}
	return w.Flush()
}

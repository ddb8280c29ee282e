package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/balancesheet/internal/adapter/http/dto"
	"github.com/iho/balancesheet/internal/amortisation"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/config"
	"github.com/iho/balancesheet/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "balancesheet",
		Short:         "Balance sheet reconciliation CLI",
		Long:          `A command line interface for schedules, grids and migrations of the reconciliation service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the reconciliation API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(newScheduleCmd(), newVarianceCmd(), newGridCmd(opts), newMigrateCmd())

	return rootCmd
}

func newScheduleCmd() *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule operations",
	}

	var start, end, total, method string
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the schedule an item would produce",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.PreviewRequest{StartDate: start, EndDate: end, TotalAmount: total, SpreadMethod: method}
			in, err := req.Parse()
			if err != nil {
				return err
			}

			lines, err := amortisation.NewGenerator().Generate(in.StartDate, in.EndDate, in.TotalAmount, in.SpreadMethod)
			if err != nil {
				return err
			}

			return printLines(cmd.OutOrStdout(), dto.PreviewFromDomain(lines))
		},
	}
	previewCmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	previewCmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	previewCmd.Flags().StringVar(&total, "total", "", "Total amount")
	previewCmd.Flags().StringVar(&method, "method", string(domain.SpreadEqual), "Spread method: equal, daily_proration, half_month")
	_ = previewCmd.MarkFlagRequired("start")
	_ = previewCmd.MarkFlagRequired("end")
	_ = previewCmd.MarkFlagRequired("total")

	scheduleCmd.AddCommand(previewCmd)
	return scheduleCmd
}

func newVarianceCmd() *cobra.Command {
	var ledger, comparison, tolerance string

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Compare a total with a ledger balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := decimal.NewFromString(ledger)
			if err != nil {
				return fmt.Errorf("invalid --ledger: %w", err)
			}
			c, err := decimal.NewFromString(comparison)
			if err != nil {
				return fmt.Errorf("invalid --total: %w", err)
			}

			result, err := domain.Variance(l, c, domain.ToleranceClass(tolerance))
			if err != nil {
				return err
			}

			status := "UNRECONCILED"
			if result.IsReconciled {
				status = "RECONCILED"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s variance=%s tolerance=%s\n", status, result.VarianceAmount.StringFixed(domain.MoneyPlaces), result.Tolerance)
			return nil
		},
	}
	cmd.Flags().StringVar(&ledger, "ledger", "", "Ledger balance")
	cmd.Flags().StringVar(&comparison, "total", "", "Comparison total")
	cmd.Flags().StringVar(&tolerance, "tolerance", string(domain.ToleranceScheduleVariance), "Tolerance class: schedule_variance, exact_match")
	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func newGridCmd(opts *options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "grid CLIENT_ID ACCOUNT_ID",
		Short: "Print the amortisation grid of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := fmt.Sprintf("%s/api/v1/accounts/%s/%s/grid", opts.baseURL, url.PathEscape(args[0]), url.PathEscape(args[1]))
			if period != "" {
				endpoint += "?period=" + url.QueryEscape(period)
			}

			var grid dto.GridResponse
			if err := getJSON(opts, endpoint, &grid); err != nil {
				return err
			}
			return printGrid(cmd.OutOrStdout(), &grid)
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "Viewing period (YYYY-MM-DD), defaults to the current month")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string

	resolve := func() error {
		if databaseURL != "" && path != "" {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if databaseURL == "" {
			databaseURL = cfg.DatabaseURL
		}
		if path == "" {
			path = cfg.MigrationsPath
		}
		return nil
	}

	migrateCmd := &cobra.Command{
		Use:               "migrate",
		Short:             "Database migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return resolve() },
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL, defaults to DATABASE_URL")
	migrateCmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory, defaults to MIGRATIONS_PATH")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(databaseURL, path)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(databaseURL, path)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := postgres.MigrationVersion(databaseURL, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%v\n", v.Version, v.Dirty)
				return nil
			},
		},
	)

	return migrateCmd
}

func getJSON(opts *options, endpoint string, v any) error {
	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printLines(w io.Writer, p *dto.PreviewResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH END\tOPENING\tAMOUNT\tCLOSING\t")
	for _, l := range p.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", l.MonthEnd, l.OpeningBalance, l.MonthlyAmount, l.ClosingBalance)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t\t\n", p.Total)
	return tw.Flush()
}

func printGrid(w io.Writer, g *dto.GridResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "ITEM\t")
	for _, c := range g.Columns {
		fmt.Fprintf(tw, "%s\t", c.MonthEnd)
	}
	fmt.Fprintln(tw)

	for _, row := range g.Rows {
		name := ""
		if row.Item != nil {
			name = truncate(row.Item.Description, 24)
		}
		fmt.Fprintf(tw, "%s\t", name)
		for _, cell := range row.Cells {
			fmt.Fprintf(tw, "%s\t", cell.ClosingBalance)
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprint(tw, "CLOSING\t")
	for _, c := range g.Columns {
		fmt.Fprintf(tw, "%s\t", c.ClosingBalance)
	}
	fmt.Fprintln(tw)

	fmt.Fprint(tw, "VARIANCE\t")
	for _, c := range g.Columns {
		switch {
		case c.Variance == nil:
			fmt.Fprint(tw, "-\t")
		case c.Variance.IsReconciled:
			fmt.Fprintf(tw, "%s ok\t", c.Variance.VarianceAmount)
		default:
			fmt.Fprintf(tw, "%s !\t", c.Variance.VarianceAmount)
		}
	}
	fmt.Fprintln(tw)

	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anyulbade/quota-settlement/internal/app"
	"github.com/anyulbade/quota-settlement/internal/config"
	"github.com/anyulbade/quota-settlement/internal/database"
	"github.com/anyulbade/quota-settlement/internal/render"
)

func main() {
	cfg := config.Load()
	app.SetupLogger(cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:          "report",
		Short:        "Generate quota settlement reports",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(generateCmd(cfg), periodsCmd(cfg), migrateCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd(cfg *config.Config) *cobra.Command {
	var period, format, out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the settlement report of one period to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Reports.GenerateSettlementReport(cmd.Context(), period, f)
			if err != nil {
				return err
			}

			if out == "" {
				out = rep.Filename
			}
			if err := os.WriteFile(out, rep.Data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d page(s), %d bytes\n", out, rep.Pages, len(rep.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "settlement period key, e.g. 2024-I")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatPDF), "output format: pdf or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default settlement-<period>.<ext>)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func periodsCmd(cfg *config.Config) *cobra.Command {
	var company string
	var limit int

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List settlement periods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, total, err := a.Periods.List(cmd.Context(), company, limit, 0)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tCOMPANY\tSEASON\tQUOTAS\tLANDINGS\tDEDUCTIONS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
					r.Key, r.CompanyName, r.SeasonName, r.Quotas, r.Landings, r.Deductions)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if total > len(rows) {
				fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d shown)\n", len(rows), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "only periods of this company id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of periods")
	return cmd
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	var down, seed, status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status {
				version, err := database.SchemaVersion(cfg.DatabaseURL())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			}
			if down {
				return database.RollbackMigrations(cfg.DatabaseURL())
			}
			if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
				return err
			}
			if !seed {
				return nil
			}

			pool, err := database.NewPool(cmd.Context(), cfg.DatabaseURL())
			if err != nil {
				return err
			}
			defer pool.Close()
			return database.SeedData(cmd.Context(), pool)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert demo data after migrating")
	cmd.Flags().BoolVar(&status, "status", false, "print the applied schema version and exit")
	return cmd
}

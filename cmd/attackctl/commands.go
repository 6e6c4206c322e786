package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/source"
	"cyber-dashboard/internal/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the summary statistics of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			st, err := s.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total attacks:       %d\n", st.TotalAttacks)
			fmt.Fprintf(out, "Avg severity score:  %.1f\n", stats.RoundMean(st.AvgSeverityScore, 1))
			fmt.Fprintf(out, "Affected users:      %d\n", st.TotalAffectedUsers)

			charts := stats.BuildCharts(st, cfg.Filters.TopAttackTypes, cfg.Filters.TopCountries)
			printCounts(out, "Attack types", charts.AttackTypes)
			printCounts(out, "Severity", charts.Severity)
			printCounts(out, "Top countries", charts.Countries)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		criteria model.FilterCriteria
		search   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attacks matching the given filters",
		Long: `List attacks matching every given filter. Filters compare exactly and are case sensitive;
--search is a case-insensitive substring match on type, country and severity.

Examples:
  attackctl list --type DDoS --country MX
  attackctl list --severity Crítico --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			view, err := s.View(criteria, search)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tTYPE\tSEVERITY\tSCORE\tCOUNTRY\tUSERS")
			for _, r := range view.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%d\n",
					r.ID, r.Timestamp, r.AttackType, r.Severity, r.SeverityScore, r.Country, r.AffectedUsers)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Showing %d of %d matching attacks (%d total)\n", len(view.Items), view.Matched, view.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.AttackType, "type", "", "attack type to match")
	cmd.Flags().StringVar(&criteria.Severity, "severity", "", "severity tier to match")
	cmd.Flags().StringVar(&criteria.Country, "country", "", "country to match")
	cmd.Flags().IntVar(&criteria.Limit, "limit", 0, "maximum rows to print (default from config)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive text search")
	return cmd
}

func newOptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the distinct values available for each filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			opts, err := s.Options()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attack types: %s\n", strings.Join(opts.AttackTypes, ", "))
			fmt.Fprintf(out, "Severities:   %s\n", strings.Join(opts.Severities, ", "))
			fmt.Fprintf(out, "Countries:    %s\n", strings.Join(opts.Countries, ", "))
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		outPath string
		count   int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a generated sample dataset to a file",
		Long: `Write a deterministic sample dataset. The format follows the file extension:
.json, .yaml, .csv, or .db/.sqlite for a SQLite database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			records := source.Generate(count, seed)
			if err := source.WriteFile(outPath, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d attacks to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	cmd.Flags().IntVar(&count, "count", 1000, "number of attacks to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}

func printCounts(out io.Writer, title string, entries []model.CountEntry) {
	fmt.Fprintf(out, "\n%s:\n", title)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%d\n", e.Label, e.Count)
	}
	tw.Flush()
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"datadash/domain/dataset"
	apperrors "datadash/internal/errors"
	"datadash/internal/loader"
	"datadash/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type previewOptions struct {
	rows     int
	describe bool
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &previewOptions{}
	rootCmd := &cobra.Command{
		Use:           "preview",
		Short:         "Preview tabular data from a repository or a local file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().IntVar(&opts.rows, "rows", 10, "Number of rows to print (0 prints all)")
	rootCmd.PersistentFlags().BoolVar(&opts.describe, "describe", false, "Also print per-column summary statistics")

	rootCmd.AddCommand(
		newRemoteCmd(opts),
		newFileCmd(opts),
	)
	return rootCmd
}

func newRemoteCmd(opts *previewOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote [repo-url] [file-path]",
		Short: "Fetch a CSV file from a repository's main branch",
		Long: `Fetch <repo-url>/raw/main/<file-path> and preview it. The file is always read as CSV.

Example: preview remote https://github.com/acme/data sets/sales.csv --rows 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := loader.NewRemoteLoader(&http.Client{Timeout: opts.timeout}, nil)
			ds, err := remote.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printDataset(cmd.OutOrStdout(), ds, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout (0 waits indefinitely)")
	return cmd
}

func newFileCmd(opts *previewOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "file [path]",
		Short: "Parse a local CSV, JSON, XML, XLS or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return apperrors.Wrapf(err, "failed to read %s", args[0])
			}
			ds, err := loader.NewUploadLoader(nil).Load(filepath.Base(args[0]), content)
			if err != nil {
				return err
			}
			return printDataset(cmd.OutOrStdout(), ds, opts)
		},
	}
}

func printDataset(out io.Writer, ds *dataset.Dataset, opts *previewOptions) error {
	fmt.Fprintf(out, "Source: %s (%s)\n", ds.Source.Locator, ds.Source.Origin)
	fmt.Fprintf(out, "Shape: %d rows x %d columns\n\n", ds.NumRows(), ds.NumColumns())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\t%s\n", strings.Join(ds.ColumnNames(), "\t"))
	for i, row := range ds.Rows(opts.rows) {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if opts.rows > 0 && ds.NumRows() > opts.rows {
		fmt.Fprintf(out, "... %d more rows\n", ds.NumRows()-opts.rows)
	}

	if !opts.describe {
		return nil
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "column\ttype\tcount\tmissing\tunique\tmean\tstd\tmin\t50%\tmax")
	for _, s := range profiling.Describe(ds) {
		if s.Numeric == nil {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t\t\t\t\t\n", s.Name, s.Type, s.Count, s.Missing, s.Unique)
			continue
		}
		std := "NaN"
		if s.Numeric.Std != nil {
			std = formatStat(*s.Numeric.Std)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t\t%s\t%s\t%s\t%s\t%s\n", s.Name, s.Type, s.Count, s.Missing,
			formatStat(s.Numeric.Mean), std, formatStat(s.Numeric.Min), formatStat(s.Numeric.Median), formatStat(s.Numeric.Max))
	}
	return w.Flush()
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

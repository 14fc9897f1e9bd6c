package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/storefront/internal/catalog"
	"github.com/mmynk/storefront/internal/storage/sqlite"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	URL      string
	Database string
	Timeout  time.Duration
	Strict   bool
	JSON     bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed the item table from the product catalog",
		Long: `Fetch the product catalog once and insert every item that is not already
stored. Existing rows are never overwritten. Rows that cannot be imported are
reported and skipped; the command only fails when the catalog itself cannot
be fetched or decoded, or when --strict is set and any row failed.

Example:
  storefront import
  storefront import --db /tmp/shop.db --url http://localhost:9000/products --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "catalog endpoint (overrides catalog.url)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides database.path)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "bound the whole import, 0 for none (overrides catalog.timeout)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit non-zero when any row failed")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the report as JSON")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	if opts.URL != "" {
		cfg.Catalog.URL = opts.URL
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Timeout != 0 {
		cfg.Catalog.Timeout = opts.Timeout
	}
	if err := revalidate(cfg); err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize storage", err)
	}
	defer store.Close()

	report, err := newImporter(cfg, store, nil, logger).Run(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "catalog import failed", err)
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		err = writeReportJSON(out, report)
	} else {
		writeReportText(out, cfg.Catalog.URL, report)
	}
	if err != nil {
		return err
	}

	if opts.Strict && report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d rows failed", report.Failed, report.Total))
	}
	return nil
}

func writeReportText(w io.Writer, url string, r *catalog.Report) {
	fmt.Fprintf(w, "Imported %s\n", url)
	fmt.Fprintf(w, "  total:    %d\n", r.Total)
	fmt.Fprintf(w, "  inserted: %d\n", r.Inserted)
	fmt.Fprintf(w, "  skipped:  %d\n", r.Skipped)
	fmt.Fprintf(w, "  failed:   %d\n", r.Failed)
	fmt.Fprintf(w, "  duration: %s\n", r.Duration.Round(time.Millisecond))

	failures := r.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w, "Failed rows:")
	for _, row := range failures {
		fmt.Fprintf(w, "  #%d id=%d %s: %v\n", row.Index, row.ID, row.Reason, row.Err)
	}
}

type reportJSON struct {
	Total      int           `json:"total"`
	Inserted   int           `json:"inserted"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	DurationMS int64         `json:"duration_ms"`
	Failures   []failureJSON `json:"failures"`
}

type failureJSON struct {
	Index  int    `json:"index"`
	ID     int64  `json:"id,omitempty"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

func writeReportJSON(w io.Writer, r *catalog.Report) error {
	out := reportJSON{
		Total:      r.Total,
		Inserted:   r.Inserted,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		DurationMS: r.Duration.Milliseconds(),
		Failures:   []failureJSON{},
	}
	for _, row := range r.Failures() {
		f := failureJSON{Index: row.Index, ID: row.ID, Reason: string(row.Reason)}
		if row.Err != nil {
			f.Error = row.Err.Error()
		}
		out.Failures = append(out.Failures, f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

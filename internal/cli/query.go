package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arq/internal/engine"
	"github.com/roach88/arq/internal/present"
	"github.com/roach88/arq/internal/results"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DataFile  string
	QueryFile string
	Database  string
	Width     string
	RawJSON   bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a SPARQL query and print the results",
		Long: `Load a Turtle data file, evaluate a SPARQL SELECT query over it and
print the solutions as a table.

With --db the data is kept in (or read from) a SQLite database, so --data
may be omitted once the database has been populated.

--results-json prints the bare SPARQL JSON results document, which the
render command reads back.

Example:
  arq query -d people.ttl -q people.rq
  arq query --db people.db -q people.rq --format json
  arq query -d people.ttl -q people.rq --results-json > people.srj`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.DataFile, "data", "d", "", "Turtle data file (.ttl)")
	cmd.Flags().StringVarP(&opts.QueryFile, "query", "q", "", "SPARQL query file (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: in memory)")
	cmd.Flags().StringVar(&opts.Width, "width", "", "cell width measure (chars|display)")
	cmd.Flags().BoolVar(&opts.RawJSON, "results-json", false, "print results as a bare "+results.MediaType+" document")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger()

	cfg, err := opts.settings()
	if err != nil {
		return f.Fail("failed to load settings", err)
	}
	width, err := widthFor(opts.Width, cfg)
	if err != nil {
		return f.Fail("invalid flag", err)
	}

	text, err := readText(opts.QueryFile)
	if err != nil {
		return f.Fail("failed to read query", err)
	}

	dbPath := firstNonEmpty(opts.Database, cfg.Database)
	if opts.DataFile == "" {
		if dbPath == "" {
			return f.Fail("nothing to query", errors.New("--data is required unless --db names an existing database"))
		}
		if _, err := os.Stat(dbPath); err != nil {
			return f.Fail("failed to open database", err)
		}
	}

	st, err := openStore(dbPath)
	if err != nil {
		return f.Fail("failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	eng := engine.New(st, logger)

	if opts.DataFile != "" {
		if _, err := eng.LoadFile(ctx, opts.DataFile); err != nil {
			return f.Fail("failed to load data", err)
		}
	}

	res, err := eng.Query(ctx, text)
	if err != nil {
		return f.Fail("query failed", err)
	}

	if opts.RawJSON {
		if err := results.WriteJSON(f.Writer, res); err != nil {
			return f.Fail("failed to write results", err)
		}
		f.VerboseLog("%d row(s)", len(res.Rows))
		return nil
	}
	if f.Format == "json" {
		return f.Success(res)
	}

	presentOpts := cfg.PresentOptions()
	presentOpts.Width = width
	lines, err := present.Table(text, res, presentOpts)
	if err != nil {
		return f.Fail("failed to render results", err)
	}

	warnIfWide(cmd.OutOrStdout(), lines, logger)
	if err := f.Lines(lines); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	f.VerboseLog("%d row(s)", len(res.Rows))
	return nil
}

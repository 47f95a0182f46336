package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/arq/internal/engine"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DataFile string
	Database string
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load Turtle data into a SQLite database",
		Long: `Parse a Turtle data file and add its triples to a SQLite database,
creating the database if it doesn't exist. Triples already present are
skipped.

Example:
  arq load -d people.ttl --db people.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.DataFile, "data", "d", "", "Turtle data file (.ttl, required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database from settings)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger()

	cfg, err := opts.settings()
	if err != nil {
		return f.Fail("failed to load settings", err)
	}

	dbPath := firstNonEmpty(opts.Database, cfg.Database)
	if dbPath == "" {
		return f.Fail("no database", errors.New("--db is required unless the settings file names a database"))
	}

	st, err := openStore(dbPath)
	if err != nil {
		return f.Fail("failed to open database", err)
	}
	defer st.Close()

	rec, err := engine.New(st, logger).LoadFile(commandContext(cmd), opts.DataFile)
	if err != nil {
		return f.Fail("failed to load data", err)
	}
	logger.Info("Load recorded",
		zap.String("load_id", rec.ID),
		zap.Int64("seq", rec.Seq),
		zap.String("database", dbPath))

	if f.Format == "json" {
		return f.Success(rec)
	}
	fmt.Fprintf(f.Writer, "Loaded %d new triple(s) from %s into %s\n", rec.Triples, rec.Source, dbPath)
	return nil
}

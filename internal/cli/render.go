package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arq/internal/present"
	"github.com/roach88/arq/internal/results"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	ResultsFile string
	QueryFile   string
	Width       string
}

// RenderOutput is the JSON payload of the render command.
type RenderOutput struct {
	Lines []string `json:"lines"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a SPARQL JSON result set as a table",
		Long: `Read solutions in the SPARQL 1.1 JSON results format, produced by any
SPARQL endpoint, and print them as a table. When --query is given, its
PREFIX declarations shorten IRIs.

Example:
  curl -H 'Accept: application/sparql-results+json' ... > out.json
  arq render -r out.json -q people.rq`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ResultsFile, "results", "r", "", "SPARQL JSON results file (required)")
	cmd.Flags().StringVarP(&opts.QueryFile, "query", "q", "", "query file whose PREFIX declarations shorten IRIs")
	cmd.Flags().StringVar(&opts.Width, "width", "", "cell width measure (chars|display)")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return f.Fail("failed to load settings", err)
	}
	width, err := widthFor(opts.Width, cfg)
	if err != nil {
		return f.Fail("invalid flag", err)
	}

	var text string
	if opts.QueryFile != "" {
		if text, err = readText(opts.QueryFile); err != nil {
			return f.Fail("failed to read query", err)
		}
	}

	file, err := os.Open(opts.ResultsFile)
	if err != nil {
		return f.Fail("failed to read results", &tagged{class: errRead, err: err})
	}
	defer file.Close()

	res, err := results.ReadJSON(file)
	if err != nil {
		return f.Fail("failed to read results", err)
	}

	presentOpts := cfg.PresentOptions()
	presentOpts.Width = width
	lines, err := present.Table(text, res, presentOpts)
	if err != nil {
		return f.Fail("failed to render results", err)
	}

	if f.Format == "json" {
		return f.Success(RenderOutput{Lines: lines})
	}
	warnIfWide(cmd.OutOrStdout(), lines, opts.logger())
	if err := f.Lines(lines); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	return nil
}

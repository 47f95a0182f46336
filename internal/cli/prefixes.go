package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/present"
	"github.com/roach88/arq/internal/table"
)

// PrefixesOptions holds flags for the prefixes command.
type PrefixesOptions struct {
	*RootOptions
	QueryFile string
	Expand    []string
}

// expansion is one prefixed name resolved by --expand.
type expansion struct {
	Name string `json:"name"`
	IRI  string `json:"iri"`
}

// NewPrefixesCommand creates the prefixes command.
func NewPrefixesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrefixesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prefixes",
		Short: "List the prefixes used to shorten IRIs for a query",
		Long: `List, in lookup order, the prefixes that shorten IRIs in the results of
a query: the query's own PREFIX declarations followed by configured ones.
The first namespace that matches an IRI wins.

With --expand the command resolves prefixed names against the same list
instead, using the first declaration of each prefix.

Example:
  arq prefixes -q people.rq
  arq prefixes -q people.rq --expand ex:alice --expand foaf:name`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefixes(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.QueryFile, "query", "q", "", "SPARQL query file (required)")
	cmd.Flags().StringArrayVar(&opts.Expand, "expand", nil, "prefixed name to resolve to a full IRI (repeatable)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runPrefixes(opts *PrefixesOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return f.Fail("failed to load settings", err)
	}
	text, err := readText(opts.QueryFile)
	if err != nil {
		return f.Fail("failed to read query", err)
	}

	reg, err := present.Registry(text, cfg.PresentOptions())
	if err != nil {
		return f.Fail("invalid prefix", err)
	}
	if len(opts.Expand) > 0 {
		return runExpand(f, reg, opts.Expand)
	}
	entries := reg.Entries()

	if f.Format == "json" {
		return f.Success(entries)
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Namespace}
	}
	lines, err := table.Render([]string{"prefix", "namespace"}, rows)
	if err != nil {
		return f.Fail("failed to render prefixes", err)
	}
	if err := f.Lines(lines); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	return nil
}

func runExpand(f *OutputFormatter, reg *prefix.Registry, names []string) error {
	out := make([]expansion, len(names))
	for i, name := range names {
		iri, ok := reg.Expand(name)
		if !ok {
			return f.Fail("cannot expand name", fmt.Errorf("%q: prefix is not declared", name))
		}
		out[i] = expansion{Name: name, IRI: iri}
	}

	if f.Format == "json" {
		return f.Success(out)
	}

	rows := make([][]string, len(out))
	for i, e := range out {
		rows[i] = []string{e.Name, e.IRI}
	}
	lines, err := table.Render([]string{"name", "iri"}, rows)
	if err != nil {
		return f.Fail("failed to render prefixes", err)
	}
	if err := f.Lines(lines); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	return nil
}

// Package present turns query results into table lines: prefixes declared in
// the query text compact IRI cells, then the table package lays the cells
// out.
package present

import (
	"fmt"

	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/rdf"
	"github.com/roach88/arq/internal/results"
	"github.com/roach88/arq/internal/table"
)

// Options configure presentation beyond what the query text declares.
type Options struct {
	// Prefixes are registered after the query's own declarations. An entry
	// whose name the query already declares is skipped.
	Prefixes []prefix.Entry

	// WellKnown registers rdf, rdfs, xsd and owl after Prefixes.
	WellKnown bool

	// Width measures cell text; nil counts runes.
	Width table.WidthFunc
}

// Registry builds the prefix registry used to display results of the query
// in text.
func Registry(text string, opts Options) (*prefix.Registry, error) {
	reg := prefix.FromQuery(text)

	for _, e := range opts.Prefixes {
		if reg.HasPrefix(e.Name) {
			continue
		}
		if err := reg.Register(e.Name, e.Namespace); err != nil {
			return nil, fmt.Errorf("default prefix %q: %w", e.Name, err)
		}
	}
	if opts.WellKnown {
		for _, ns := range rdf.WellKnown {
			if reg.HasPrefix(ns.Prefix) {
				continue
			}
			if err := reg.Register(ns.Prefix, ns.IRI); err != nil {
				return nil, fmt.Errorf("well-known prefix %q: %w", ns.Prefix, err)
			}
		}
	}
	return reg, nil
}

// Table renders res as table lines, compacting IRIs with the prefixes
// declared in text and those configured in opts.
func Table(text string, res *results.Result, opts Options) ([]string, error) {
	reg, err := Registry(text, opts)
	if err != nil {
		return nil, err
	}

	cells, err := res.Strings(reg)
	if err != nil {
		return nil, err
	}

	r := &table.Renderer{Width: opts.Width}
	return r.Render(res.Columns, cells)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/results"
	"github.com/roach88/arq/internal/sparql"
	"github.com/roach88/arq/internal/store"
	"github.com/roach88/arq/internal/turtle"
)

// ErrUnsupportedFormat is returned by LoadFile for data files that are not
// Turtle.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// ErrStore is matched by errors that come from the triple store itself
// rather than from the data or the query text.
var ErrStore = errors.New("store failure")

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string   { return e.op + ": " + e.err.Error() }
func (e *storeError) Unwrap() []error { return []error{ErrStore, e.err} }

// wrapStore tags err as a store failure unless it only reports that ctx
// ended.
func wrapStore(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &storeError{op: op, err: err}
}

// Engine loads RDF data into a store and answers SELECT queries over it.
type Engine struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates an Engine over st. A nil logger discards all output.
func New(st *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, logger: logger}
}

// LoadFile parses a Turtle file and loads its triples. The file must have a
// .ttl extension.
func (e *Engine) LoadFile(ctx context.Context, path string) (store.LoadRecord, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".ttl" {
		return store.LoadRecord{}, fmt.Errorf("%w: %q (expected .ttl)", ErrUnsupportedFormat, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return store.LoadRecord{}, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	return e.Load(ctx, path, f)
}

// Load parses Turtle from r and loads its triples, recording source as the
// load's origin.
func (e *Engine) Load(ctx context.Context, source string, r io.Reader) (store.LoadRecord, error) {
	start := time.Now()

	triples, err := turtle.Parse(ctx, r)
	if err != nil {
		return store.LoadRecord{}, fmt.Errorf("parse %s: %w", source, err)
	}

	rec, err := e.store.Load(ctx, source, triples)
	if err != nil {
		return store.LoadRecord{}, wrapStore(ctx, "load "+source, err)
	}

	e.logger.Debug("Loaded data",
		zap.String("source", source),
		zap.String("load_id", rec.ID),
		zap.Int("parsed", len(triples)),
		zap.Int("added", rec.Triples),
		zap.Duration("elapsed", time.Since(start)))
	return rec, nil
}

// Query parses and evaluates a SPARQL SELECT query.
//
// Errors wrap sparql.ErrUnsupported for queries outside the supported
// subset, queryir.ErrInvalidQuery for queries that cannot be evaluated and
// ErrStore when the store fails while answering.
func (e *Engine) Query(ctx context.Context, text string) (*results.Result, error) {
	start := time.Now()

	q, err := sparql.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if err := queryir.Validate(q); err != nil {
		return nil, err
	}

	e.logger.Debug("Evaluating query", zap.Stringer("query", q))

	res, err := e.store.Select(ctx, q)
	if err != nil {
		return nil, wrapStore(ctx, "evaluate query", err)
	}

	e.logger.Debug("Query complete",
		zap.Int("rows", len(res.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

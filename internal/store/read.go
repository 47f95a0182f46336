package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/querysql"
	"github.com/roach88/arq/internal/rdf"
	"github.com/roach88/arq/internal/results"
)

// Select evaluates q and returns one row per solution with columns in
// q.Vars order. Row order is deterministic for a given store content.
//
// Returns an empty (non-nil) Rows slice when nothing matches.
func (s *Store) Select(ctx context.Context, q *queryir.Select) (*results.Result, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	res := &results.Result{
		Columns: append([]string(nil), q.Vars...),
		Rows:    [][]rdf.Term{},
	}
	for rows.Next() {
		row, err := scanSolution(rows, len(q.Vars))
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}

	return res, nil
}

// scanSolution reads querysql.ColumnsPerVar columns per variable.
func scanSolution(rows *sql.Rows, nvars int) ([]rdf.Term, error) {
	kinds := make([]sql.NullInt64, nvars)
	values := make([]sql.NullString, nvars)
	datatypes := make([]sql.NullString, nvars)
	langs := make([]sql.NullString, nvars)

	dest := make([]any, 0, nvars*querysql.ColumnsPerVar)
	for i := 0; i < nvars; i++ {
		dest = append(dest, &kinds[i], &values[i], &datatypes[i], &langs[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan solution: %w", err)
	}

	row := make([]rdf.Term, nvars)
	for i := range row {
		if !kinds[i].Valid {
			continue
		}
		row[i] = rdf.Term{
			Kind:     rdf.TermKind(kinds[i].Int64),
			Value:    values[i].String,
			Datatype: datatypes[i].String,
			Lang:     langs[i].String,
		}
	}
	return row, nil
}

// Loads returns every load record ordered by seq.
func (s *Store) Loads(ctx context.Context) ([]LoadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source, triples
		FROM loads
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	loads := []LoadRecord{}
	for rows.Next() {
		var rec LoadRecord
		if err := rows.Scan(&rec.ID, &rec.Seq, &rec.Source, &rec.Triples); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		loads = append(loads, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loads: %w", err)
	}
	return loads, nil
}

// Count returns the number of distinct triples in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count triples: %w", err)
	}
	return n, nil
}

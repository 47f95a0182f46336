package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/arq/internal/rdf"
)

// LoadRecord describes one load of triples into the store.
type LoadRecord struct {
	ID      string `json:"id"`      // UUIDv7
	Seq     int64  `json:"seq"`     // load order, starting at 1
	Source  string `json:"source"`  // file path or other label
	Triples int    `json:"triples"` // triples newly added; duplicates are not counted
}

// Load inserts triples in a single transaction and records the load.
// Triples already in the store are skipped, so loading the same data twice
// leaves the store unchanged apart from the extra load record.
func (s *Store) Load(ctx context.Context, source string, triples []rdf.Triple) (LoadRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return LoadRecord{}, fmt.Errorf("generate load id: %w", err)
	}
	rec := LoadRecord{ID: id.String(), Source: source}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LoadRecord{}, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM loads`).Scan(&rec.Seq); err != nil {
		return LoadRecord{}, fmt.Errorf("next load seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO loads (id, seq, source, triples) VALUES (?, ?, ?, 0)`,
		rec.ID, rec.Seq, rec.Source,
	); err != nil {
		return LoadRecord{}, fmt.Errorf("write load: %w", err)
	}

	w, err := newTermWriter(ctx, tx)
	if err != nil {
		return LoadRecord{}, err
	}
	defer w.close()

	insertTriple, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (s, p, o, load_id) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return LoadRecord{}, fmt.Errorf("prepare triple insert: %w", err)
	}
	defer insertTriple.Close()

	for i, t := range triples {
		ids := [3]int64{}
		for j, term := range [3]rdf.Term{t.S, t.P, t.O} {
			id, err := w.intern(ctx, term)
			if err != nil {
				return LoadRecord{}, fmt.Errorf("triple %d: %w", i, err)
			}
			ids[j] = id
		}
		res, err := insertTriple.ExecContext(ctx, ids[0], ids[1], ids[2], rec.ID)
		if err != nil {
			return LoadRecord{}, fmt.Errorf("triple %d: write: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return LoadRecord{}, fmt.Errorf("triple %d: rows affected: %w", i, err)
		}
		rec.Triples += int(n)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE loads SET triples = ? WHERE id = ?`, rec.Triples, rec.ID); err != nil {
		return LoadRecord{}, fmt.Errorf("update load: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return LoadRecord{}, fmt.Errorf("commit load: %w", err)
	}
	return rec, nil
}

// termWriter interns terms within one transaction, caching ids it has seen.
type termWriter struct {
	insert *sql.Stmt
	lookup *sql.Stmt
	cache  map[rdf.Term]int64
}

func newTermWriter(ctx context.Context, tx *sql.Tx) (*termWriter, error) {
	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO terms (kind, value, datatype, lang) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("prepare term insert: %w", err)
	}
	lookup, err := tx.PrepareContext(ctx,
		`SELECT id FROM terms WHERE kind = ? AND value = ? AND datatype = ? AND lang = ?`)
	if err != nil {
		insert.Close()
		return nil, fmt.Errorf("prepare term lookup: %w", err)
	}
	return &termWriter{insert: insert, lookup: lookup, cache: make(map[rdf.Term]int64)}, nil
}

func (w *termWriter) intern(ctx context.Context, t rdf.Term) (int64, error) {
	if t.IsZero() {
		return 0, fmt.Errorf("cannot store unbound term")
	}
	if id, ok := w.cache[t]; ok {
		return id, nil
	}
	args := []any{int(t.Kind), t.Value, t.Datatype, t.Lang}
	if _, err := w.insert.ExecContext(ctx, args...); err != nil {
		return 0, fmt.Errorf("intern %s: %w", t, err)
	}
	var id int64
	if err := w.lookup.QueryRowContext(ctx, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup %s: %w", t, err)
	}
	w.cache[t] = id
	return id, nil
}

func (w *termWriter) close() {
	w.insert.Close()
	w.lookup.Close()
}

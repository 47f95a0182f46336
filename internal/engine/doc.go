// Package engine ties the front ends to the store.
//
// Data flows in one direction:
//
//	Turtle file -> turtle.Parse (rdf-go decoder) -> store.Load
//	SPARQL text -> sparql.Parse -> queryir.Validate -> store.Select -> results.Result
//
// Failures inside the store are tagged with ErrStore so callers can tell
// them apart from bad input.
//
// The engine owns no state beyond the store and a logger. Every call is
// independent; callers may share an Engine between goroutines because the
// store serializes access through a single connection.
package engine

// Package queryir provides the query intermediate representation evaluated
// by the store: a basic graph pattern with projection, ordering and slicing.
//
// ARCHITECTURE:
//
//	[SPARQL text] → [sparql.Parse] → [queryir.Select] → [querysql] → SQLite
//
// The IR is deliberately small. It covers exactly the SPARQL fragment the
// front end accepts:
//
//	QueryIR              SPARQL
//	-------              ------
//	Select.Patterns      triple patterns inside WHERE { }
//	Var                  ?name / $name
//	Const                IRI or literal in a pattern
//	Select.Vars          projection (SELECT ?a ?b, or * expanded)
//	Select.Distinct      DISTINCT / REDUCED
//	Select.OrderBy       ORDER BY ?v, ASC(?v), DESC(?v)
//	Select.Limit/Offset  LIMIT / OFFSET
//
// SEALED INTERFACES:
//
// Node is sealed with a marker method so backends can switch exhaustively:
//
//	switch n := node.(type) {
//	case Var:
//	    // join or project
//	case Const:
//	    // parameterized equality
//	}
//
// Blank nodes written in a query pattern act as variables that cannot be
// projected; the front end rewrites them to Var with a reserved name.
package queryir

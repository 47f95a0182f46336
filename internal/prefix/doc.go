// Package prefix compacts full namespace IRIs into prefixed names using the
// PREFIX declarations written in a query's source text.
//
// A Registry is an ordered, append-only list of (name, namespace) pairs.
// One registry is built per query and is read-only while a result is being
// rendered; nothing is shared between queries.
//
// Lookup is a linear scan in registration order. The first namespace that is
// a prefix of a candidate IRI wins, so
//
//	PREFIX a: <http://example.com/>
//	PREFIX b: <http://example.com/ns#>
//
// compacts <http://example.com/ns#Foo> to "a:ns#Foo".
//
// Compact never fails: an IRI with no matching namespace is returned
// unchanged, which makes it safe to apply to every IRI cell of a result.
package prefix

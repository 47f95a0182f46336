package rdf

// Namespace IRIs of the core W3C vocabularies.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
	NamespaceOWL  = "http://www.w3.org/2002/07/owl#"
)

// Datatype and property IRIs used by the parsers.
const (
	XSDString     = NamespaceXSD + "string"
	XSDInteger    = NamespaceXSD + "integer"
	XSDDecimal    = NamespaceXSD + "decimal"
	XSDDouble     = NamespaceXSD + "double"
	XSDBoolean    = NamespaceXSD + "boolean"
	RDFLangString = NamespaceRDF + "langString"

	// RDFType is the predicate abbreviated as "a".
	RDFType = NamespaceRDF + "type"
)

// Namespace is a well-known prefix binding.
type Namespace struct {
	Prefix string
	IRI    string
}

// WellKnown lists the bindings offered as display defaults, in the order
// they are registered.
var WellKnown = []Namespace{
	{Prefix: "rdf", IRI: NamespaceRDF},
	{Prefix: "rdfs", IRI: NamespaceRDFS},
	{Prefix: "xsd", IRI: NamespaceXSD},
	{Prefix: "owl", IRI: NamespaceOWL},
}

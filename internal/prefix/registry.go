package prefix

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidName is returned by Register for names that are not a
	// non-empty run of word characters.
	ErrInvalidName = errors.New("invalid prefix name")

	// ErrInvalidNamespace is returned by Register for empty namespaces and
	// namespaces containing characters that cannot appear in an IRI.
	ErrInvalidNamespace = errors.New("invalid namespace IRI")
)

// declaration matches `PREFIX name: <iri>`. Namespaces are restricted to a
// URI-safe character set; declarations using anything else are skipped.
var declaration = regexp.MustCompile(`PREFIX (\w+): <([A-Za-z0-9/:#.]+)>`)

var (
	validName      = regexp.MustCompile(`^\w+$`)
	validNamespace = regexp.MustCompile("^[^\\s<>\"{}|^`\\\\]+$")
)

// Entry is a single prefix declaration.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"iri" yaml:"iri"`
}

// Registry holds prefix declarations in registration order.
// The zero value is an empty registry ready for use.
type Registry struct {
	entries []Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// FromQuery builds a registry from every declaration in text.
func FromQuery(text string) *Registry {
	r := New()
	r.ScanAll(text)
	return r
}

// ScanAndRegister registers the first declaration found in text and reports
// whether one was found. Later declarations in the same text are ignored;
// callers feeding whole query files should use ScanAll.
func (r *Registry) ScanAndRegister(text string) bool {
	m := declaration.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	r.entries = append(r.entries, Entry{Name: m[1], Namespace: m[2]})
	return true
}

// ScanAll registers every non-overlapping declaration in text, in source
// order, and returns how many were registered.
func (r *Registry) ScanAll(text string) int {
	matches := declaration.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		r.entries = append(r.entries, Entry{Name: m[1], Namespace: m[2]})
	}
	return len(matches)
}

// Register appends a declaration. Names follow the scanner's rule; namespaces
// may use any character legal in an IRI, which admits vocabularies the
// scanner cannot read from query text.
func (r *Registry) Register(name, namespace string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !validNamespace.MatchString(namespace) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	r.entries = append(r.entries, Entry{Name: name, Namespace: namespace})
	return nil
}

// HasPrefix reports whether name exactly equals a registered prefix name.
func (r *Registry) HasPrefix(name string) bool {
	for _, e := range r.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Compact returns iri in "name:local" form using the first registered
// namespace that prefixes it. iri may be written as <...> or bare. When no
// namespace matches, iri is returned unchanged.
func (r *Registry) Compact(iri string) string {
	interior := iri
	if strings.HasPrefix(interior, "<") && strings.HasSuffix(interior, ">") && len(interior) >= 2 {
		interior = interior[1 : len(interior)-1]
	}

	for _, e := range r.entries {
		if local, ok := strings.CutPrefix(interior, e.Namespace); ok {
			return e.Name + ":" + local
		}
	}
	return iri
}

// Expand resolves a prefixed name such as "ex:Foo" to its full IRI using the
// first declaration with that name.
func (r *Registry) Expand(pname string) (string, bool) {
	name, local, ok := strings.Cut(pname, ":")
	if !ok {
		return "", false
	}
	for _, e := range r.entries {
		if e.Name == name {
			return e.Namespace + local, true
		}
	}
	return "", false
}

// Entries returns a copy of the registered declarations in order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	return len(r.entries)
}

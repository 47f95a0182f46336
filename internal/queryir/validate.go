package queryir

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is matched by every error returned from Validate.
var ErrInvalidQuery = errors.New("invalid query")

// Validate checks that a query can be evaluated:
//  1. At least one triple pattern, with no nil nodes
//  2. At least one projected variable, none repeated, none hidden
//  3. ORDER BY variables are bound by some pattern
//  4. OFFSET is non-negative
//
// Projected variables that no pattern binds are allowed; they are unbound
// in every solution.
//
// Validate is a pure function with no side effects.
func Validate(q *Select) error {
	v := &validator{}
	v.validate(q)
	return errors.Join(v.errs...)
}

// validator accumulates problems during traversal.
type validator struct {
	errs []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...)))
}

func (v *validator) validate(q *Select) {
	if q == nil {
		v.addError("nil query")
		return
	}

	if len(q.Patterns) == 0 {
		v.addError("no triple patterns")
	}
	for i, p := range q.Patterns {
		for j, n := range p.Nodes() {
			if n == nil {
				v.addError("pattern %d: position %d is empty", i, j)
			}
		}
	}

	if len(q.Vars) == 0 {
		v.addError("no projected variables")
	}
	seen := make(map[string]bool, len(q.Vars))
	for _, name := range q.Vars {
		if IsHidden(name) {
			v.addError("variable %q cannot be projected", name)
		}
		if seen[name] {
			v.addError("variable ?%s projected twice", name)
		}
		seen[name] = true
	}

	bound := make(map[string]bool)
	for _, name := range q.PatternVars() {
		bound[name] = true
	}
	for _, k := range q.OrderBy {
		if !bound[k.Var] {
			v.addError("ORDER BY ?%s: variable not bound by any pattern", k.Var)
		}
	}

	if q.Offset < 0 {
		v.addError("negative OFFSET %d", q.Offset)
	}
}

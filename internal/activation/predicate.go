// Package activation evaluates the boolean predicates that decide whether a
// feature or a stage runs. Evaluation is pure and total: missing answers and
// type mismatches make the affected node false instead of failing.
package activation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownPredicate is returned when a predicate node kind is not recognized.
	ErrUnknownPredicate = errors.New("unknown predicate kind")
	// ErrInvalidPredicate is returned for structurally broken predicate trees.
	ErrInvalidPredicate = errors.New("invalid predicate")
)

// Answers is read access to the configuration model.
type Answers interface {
	Get(key string) (any, bool)
}

// IDSet is the set of feature ids that have contributed at least one stage so far.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Contains reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Env is the read-only input to predicate evaluation.
type Env struct {
	Answers Answers
	Active  IDSet
}

func (e Env) lookup(key string) (any, bool) {
	if e.Answers == nil {
		return nil, false
	}
	return e.Answers.Get(key)
}

// Predicate is one node of an activation expression.
type Predicate interface {
	Eval(env Env) bool
	String() string
}

// Evaluate runs p against the answers and the activated feature ids.
// A nil predicate means "always active".
func Evaluate(p Predicate, answers Answers, active IDSet) bool {
	if p == nil {
		return true
	}
	return p.Eval(Env{Answers: answers, Active: active})
}

type equalsNode struct {
	Key   string
	Value any
}

// Equals is true iff the answer for key equals value.
func Equals(key string, value any) Predicate { return equalsNode{Key: key, Value: value} }

func (n equalsNode) Eval(env Env) bool {
	got, ok := env.lookup(n.Key)
	if !ok {
		return false
	}
	return ValuesEqual(got, n.Value)
}

func (n equalsNode) String() string { return fmt.Sprintf("equals(%s, %v)", n.Key, formatValue(n.Value)) }

type includesNode struct {
	Key   string
	Value any
}

// IncludesValue is true iff the answer for key is a list containing value.
func IncludesValue(key string, value any) Predicate { return includesNode{Key: key, Value: value} }

func (n includesNode) Eval(env Env) bool {
	got, ok := env.lookup(n.Key)
	if !ok {
		return false
	}
	list, ok := asList(got)
	if !ok {
		return false
	}
	for _, item := range list {
		if scalarEqual(item, n.Value) {
			return true
		}
	}
	return false
}

func (n includesNode) String() string {
	return fmt.Sprintf("includesValue(%s, %v)", n.Key, formatValue(n.Value))
}

type andNode struct{ Children []Predicate }

// And is true when every child is true. And() with no children is true.
func And(children ...Predicate) Predicate { return andNode{Children: children} }

func (n andNode) Eval(env Env) bool {
	for _, c := range n.Children {
		if c == nil || !c.Eval(env) {
			return false
		}
	}
	return true
}

func (n andNode) String() string { return "and(" + joinChildren(n.Children) + ")" }

type orNode struct{ Children []Predicate }

// Or is true when any child is true. Or() with no children is false.
func Or(children ...Predicate) Predicate { return orNode{Children: children} }

func (n orNode) Eval(env Env) bool {
	for _, c := range n.Children {
		if c != nil && c.Eval(env) {
			return true
		}
	}
	return false
}

func (n orNode) String() string { return "or(" + joinChildren(n.Children) + ")" }

type notNode struct{ Child Predicate }

// Not negates p.
func Not(p Predicate) Predicate { return notNode{Child: p} }

func (n notNode) Eval(env Env) bool {
	if n.Child == nil {
		return false
	}
	return !n.Child.Eval(env)
}

func (n notNode) String() string {
	if n.Child == nil {
		return "not(<nil>)"
	}
	return "not(" + n.Child.String() + ")"
}

type featureActiveNode struct{ ID string }

// FeatureActive is true iff the feature has contributed at least one stage.
func FeatureActive(id string) Predicate { return featureActiveNode{ID: id} }

func (n featureActiveNode) Eval(env Env) bool { return env.Active.Contains(n.ID) }

func (n featureActiveNode) String() string { return "featureActive(" + n.ID + ")" }

// Validate walks the tree and rejects nil children, empty keys and node
// types this package does not know about.
func Validate(p Predicate) error {
	switch n := p.(type) {
	case nil:
		return nil
	case equalsNode:
		if n.Key == "" {
			return fmt.Errorf("%w: equals with empty key", ErrInvalidPredicate)
		}
	case includesNode:
		if n.Key == "" {
			return fmt.Errorf("%w: includesValue with empty key", ErrInvalidPredicate)
		}
	case andNode:
		return validateChildren("and", n.Children)
	case orNode:
		return validateChildren("or", n.Children)
	case notNode:
		if n.Child == nil {
			return fmt.Errorf("%w: not without operand", ErrInvalidPredicate)
		}
		return Validate(n.Child)
	case featureActiveNode:
		if n.ID == "" {
			return fmt.Errorf("%w: featureActive with empty id", ErrInvalidPredicate)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownPredicate, p)
	}
	return nil
}

func validateChildren(op string, children []Predicate) error {
	for i, c := range children {
		if c == nil {
			return fmt.Errorf("%w: %s operand %d is nil", ErrInvalidPredicate, op, i)
		}
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// FeatureRefs returns the feature ids referenced by featureActive nodes.
func FeatureRefs(p Predicate) []string {
	var refs []string
	walk(p, func(n Predicate) {
		if fa, ok := n.(featureActiveNode); ok {
			refs = append(refs, fa.ID)
		}
	})
	return refs
}

// Keys returns the answer keys referenced by equals and includesValue nodes.
func Keys(p Predicate) []string {
	var keys []string
	walk(p, func(n Predicate) {
		switch t := n.(type) {
		case equalsNode:
			keys = append(keys, t.Key)
		case includesNode:
			keys = append(keys, t.Key)
		}
	})
	return keys
}

func walk(p Predicate, fn func(Predicate)) {
	if p == nil {
		return
	}
	fn(p)
	switch n := p.(type) {
	case andNode:
		for _, c := range n.Children {
			walk(c, fn)
		}
	case orNode:
		for _, c := range n.Children {
			walk(c, fn)
		}
	case notNode:
		walk(n.Child, fn)
	}
}

func joinChildren(children []Predicate) string {
	parts := make([]string, len(children))
	for i, c := range children {
		if c == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

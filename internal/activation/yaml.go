package activation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expr wraps a Predicate so it can be decoded from feature descriptors.
//
// Each node is a single-key mapping:
//
//	equals:        {key: databaseProvider, value: postgresql}
//	includesValue: {key: apiFeatures, value: graphql}
//	and:           [<node>, <node>]
//	or:            [<node>, <node>]
//	not:           <node>
//	featureActive: prisma
type Expr struct {
	Predicate
}

type keyValue struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	p, err := decodeNode(node)
	if err != nil {
		return err
	}
	e.Predicate = p
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Expr) MarshalYAML() (any, error) {
	return encodeNode(e.Predicate)
}

// IsZero lets omitempty drop absent predicates.
func (e Expr) IsZero() bool { return e.Predicate == nil }

func decodeNode(node *yaml.Node) (Predicate, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("line %d: %w: expected a mapping with exactly one predicate key", node.Line, ErrInvalidPredicate)
	}
	kind := node.Content[0].Value
	body := node.Content[1]

	switch kind {
	case "equals", "includesValue":
		var kv keyValue
		if err := body.Decode(&kv); err != nil {
			return nil, fmt.Errorf("line %d: decoding %s: %w", body.Line, kind, err)
		}
		if kv.Key == "" {
			return nil, fmt.Errorf("line %d: %w: %s requires a key", body.Line, ErrInvalidPredicate, kind)
		}
		if kind == "equals" {
			return Equals(kv.Key, kv.Value), nil
		}
		return IncludesValue(kv.Key, kv.Value), nil
	case "and", "or":
		if body.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: %w: %s expects a list", body.Line, ErrInvalidPredicate, kind)
		}
		children := make([]Predicate, 0, len(body.Content))
		for _, c := range body.Content {
			child, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if kind == "and" {
			return And(children...), nil
		}
		return Or(children...), nil
	case "not":
		child, err := decodeNode(body)
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	case "featureActive":
		if body.Kind != yaml.ScalarNode || body.Value == "" {
			return nil, fmt.Errorf("line %d: %w: featureActive expects a feature id", body.Line, ErrInvalidPredicate)
		}
		return FeatureActive(body.Value), nil
	default:
		return nil, fmt.Errorf("line %d: %w: %q", node.Content[0].Line, ErrUnknownPredicate, kind)
	}
}

func encodeNode(p Predicate) (any, error) {
	switch n := p.(type) {
	case nil:
		return nil, nil
	case equalsNode:
		return map[string]any{"equals": keyValue{Key: n.Key, Value: n.Value}}, nil
	case includesNode:
		return map[string]any{"includesValue": keyValue{Key: n.Key, Value: n.Value}}, nil
	case andNode:
		children, err := encodeChildren(n.Children)
		return map[string]any{"and": children}, err
	case orNode:
		children, err := encodeChildren(n.Children)
		return map[string]any{"or": children}, err
	case notNode:
		child, err := encodeNode(n.Child)
		return map[string]any{"not": child}, err
	case featureActiveNode:
		return map[string]any{"featureActive": n.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownPredicate, p)
	}
}

func encodeChildren(children []Predicate) ([]any, error) {
	out := make([]any, 0, len(children))
	for _, c := range children {
		v, err := encodeNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

package feature

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/stackgen/stackgen/internal/activation"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateFeature is returned when two descriptors share an id.
	ErrDuplicateFeature = errors.New("duplicate feature id")
	// ErrDuplicateStage is returned when a feature declares two stages with the same name.
	ErrDuplicateStage = errors.New("duplicate stage name")
	// ErrPromptConflict is returned when two features declare the same prompt id with different types.
	ErrPromptConflict = errors.New("conflicting prompt declaration")
	// ErrInvalidDescriptor wraps struct validation failures.
	ErrInvalidDescriptor = errors.New("invalid feature descriptor")
)

var validate = validator.New()

// Registry is the ordered, read-only feature catalog.
// Declaration order is the tie-break used for stable plan ordering.
type Registry struct {
	features []*Feature
	byID     map[string]int
	prompts  map[string]*Prompt
}

// NewRegistry validates and indexes features in the given order.
func NewRegistry(features ...Feature) (*Registry, error) {
	r := &Registry{
		byID:    make(map[string]int, len(features)),
		prompts: make(map[string]*Prompt),
	}
	for i := range features {
		f := features[i]
		if err := r.add(&f); err != nil {
			return nil, err
		}
	}
	if err := r.checkFeatureRefs(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) add(f *Feature) error {
	if err := validateFeature(f); err != nil {
		return err
	}
	if _, exists := r.byID[f.ID]; exists {
		return fmt.Errorf("registering %s: %w", f.ID, ErrDuplicateFeature)
	}
	for i := range f.Configuration {
		p := &f.Configuration[i]
		if prev, ok := r.prompts[p.ID]; ok {
			if prev.Type != p.Type {
				return fmt.Errorf("registering %s: prompt %s declared as %s and %s: %w",
					f.ID, p.ID, prev.Type, p.Type, ErrPromptConflict)
			}
			continue
		}
		r.prompts[p.ID] = p
	}
	r.byID[f.ID] = len(r.features)
	r.features = append(r.features, f)
	return nil
}

func validateFeature(f *Feature) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("feature %q: %w: %v", f.ID, ErrInvalidDescriptor, err)
	}
	if err := activation.Validate(f.ActivatedBy.Predicate); err != nil {
		return fmt.Errorf("feature %s activatedBy: %w", f.ID, err)
	}
	for _, p := range f.Configuration {
		if (p.Type == PromptSelect || p.Type == PromptMultiSelect) && len(p.Options) == 0 {
			return fmt.Errorf("feature %s prompt %s: %w: %s prompt needs options", f.ID, p.ID, ErrInvalidDescriptor, p.Type)
		}
	}
	seen := make(map[string]bool, len(f.Stages))
	for i := range f.Stages {
		s := &f.Stages[i]
		if seen[s.Name] {
			return fmt.Errorf("feature %s stage %s: %w", f.ID, s.Name, ErrDuplicateStage)
		}
		seen[s.Name] = true
		if err := activation.Validate(s.ActivatedBy.Predicate); err != nil {
			return fmt.Errorf("feature %s stage %s activatedBy: %w", f.ID, s.Name, err)
		}
	}
	return nil
}

// checkFeatureRefs makes sure featureActive predicates name registered features.
func (r *Registry) checkFeatureRefs() error {
	for _, f := range r.features {
		preds := []activation.Predicate{f.ActivatedBy.Predicate}
		for i := range f.Stages {
			preds = append(preds, f.Stages[i].ActivatedBy.Predicate)
		}
		for _, p := range preds {
			for _, ref := range activation.FeatureRefs(p) {
				if _, ok := r.byID[ref]; !ok {
					return fmt.Errorf("feature %s: featureActive references unknown feature %q: %w",
						f.ID, ref, ErrInvalidDescriptor)
				}
			}
		}
	}
	return nil
}

// Get returns the feature with id.
func (r *Registry) Get(id string) (*Feature, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.features[i], true
}

// Index returns the declaration position of id, or -1.
func (r *Registry) Index(id string) int {
	if i, ok := r.byID[id]; ok {
		return i
	}
	return -1
}

// Features returns all features in declaration order.
func (r *Registry) Features() []*Feature {
	out := make([]*Feature, len(r.features))
	copy(out, r.features)
	return out
}

// IDs returns feature ids in declaration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.features))
	for i, f := range r.features {
		out[i] = f.ID
	}
	return out
}

// Len returns the number of registered features.
func (r *Registry) Len() int { return len(r.features) }

// Prompt returns the first declaration of a prompt id.
func (r *Registry) Prompt(id string) (*Prompt, bool) {
	p, ok := r.prompts[id]
	return p, ok
}

// PromptKind returns the prompt type for id as a string, or "".
func (r *Registry) PromptKind(id string) string {
	if p, ok := r.prompts[id]; ok {
		return string(p.Type)
	}
	return ""
}

// Decode reads every YAML document in rd as a feature descriptor.
// Unknown fields are rejected so typos in catalogs fail at load time.
func Decode(rd io.Reader) ([]Feature, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)

	var out []Feature
	for {
		var f Feature
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding feature descriptor: %w", err)
		}
		if f.ID == "" && len(f.Stages) == 0 {
			continue
		}
		out = append(out, f)
	}
}

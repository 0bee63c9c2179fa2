// Package feature defines the static feature descriptors that make up the
// scaffolding catalog: prompts, stages and the work each stage performs.
// Descriptors are loaded once at startup and never mutated afterwards.
package feature

import (
	"fmt"
	"strings"

	"github.com/stackgen/stackgen/internal/activation"
	"gopkg.in/yaml.v3"
)

// PromptType is the kind of answer a prompt collects.
type PromptType string

const (
	PromptBoolean     PromptType = "boolean"
	PromptSelect      PromptType = "select"
	PromptMultiSelect PromptType = "multiselect"
	PromptText        PromptType = "text"
)

// Option is one choice of a select or multiselect prompt.
type Option struct {
	Label       string `yaml:"label" json:"label" validate:"required"`
	Value       string `yaml:"value" json:"value" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Prompt describes one answer the configuration model must collect.
type Prompt struct {
	ID           string     `yaml:"id" json:"id" validate:"required"`
	Type         PromptType `yaml:"type" json:"type" validate:"required,oneof=boolean select multiselect text"`
	Title        string     `yaml:"title" json:"title" validate:"required"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	Required     bool       `yaml:"required,omitempty" json:"required,omitempty"`
	DefaultValue any        `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	Options      []Option   `yaml:"options,omitempty" json:"options,omitempty" validate:"dive"`
}

// HasOption reports whether value is one of the prompt's option values.
func (p *Prompt) HasOption(value string) bool {
	for _, o := range p.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Dependency sections a package can be added to.
const (
	SectionDependencies         = "dependencies"
	SectionDevDependencies      = "devDependencies"
	SectionPeerDependencies     = "peerDependencies"
	SectionOptionalDependencies = "optionalDependencies"
)

// Dependency is a package entry merged into a workspace manifest.
type Dependency struct {
	Name      string `yaml:"name" json:"name" validate:"required"`
	Version   string `yaml:"version,omitempty" json:"version,omitempty"`
	Workspace string `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=dependencies devDependencies peerDependencies optionalDependencies"`
}

// Section returns the manifest section, defaulting to "dependencies".
func (d Dependency) Section() string {
	if d.Type == "" {
		return SectionDependencies
	}
	return d.Type
}

// PackageAndVersion splits a "name@version" dependency string. Scoped names keep their
// leading "@". The version defaults to Version, then "latest".
func (d Dependency) PackageAndVersion() (string, string) {
	name := d.Name
	version := d.Version
	if idx := strings.LastIndex(name, "@"); idx > 0 {
		if version == "" {
			version = name[idx+1:]
		}
		name = name[:idx]
	}
	if version == "" {
		version = "latest"
	}
	return name, version
}

// Template copies a file, directory or glob from the template root.
type Template struct {
	Source      string `yaml:"source" json:"source" validate:"required"`
	Destination string `yaml:"destination" json:"destination" validate:"required"`
}

// Script is a shell command run from Dir, relative to the project root.
type Script struct {
	Src string `yaml:"src" json:"src" validate:"required"`
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// FileMod lists codemods applied in order to one file.
type FileMod struct {
	Path     string   `json:"path" validate:"required"`
	Codemods []string `json:"codemods" validate:"min=1,dive,required"`
}

// ModList keeps file mods in declaration order. In YAML it is written as a
// mapping from file path to one codemod name or a list of names.
type ModList []FileMod

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *ModList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mods must be a mapping of file path to codemods", node.Line)
	}
	out := make(ModList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		path := node.Content[i].Value
		val := node.Content[i+1]
		var names []string
		switch val.Kind {
		case yaml.ScalarNode:
			names = []string{val.Value}
		case yaml.SequenceNode:
			if err := val.Decode(&names); err != nil {
				return fmt.Errorf("line %d: decoding codemods for %s: %w", val.Line, path, err)
			}
		default:
			return fmt.Errorf("line %d: codemods for %s must be a name or a list of names", val.Line, path)
		}
		out = append(out, FileMod{Path: path, Codemods: names})
	}
	*m = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m ModList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, fm := range m {
		val := &yaml.Node{}
		if err := val.Encode(fm.Codemods); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: fm.Path}, val)
	}
	return node, nil
}

// Stage is one unit of execution belonging to a feature.
type Stage struct {
	Name         string          `yaml:"name" json:"name" validate:"required"`
	ActivatedBy  activation.Expr `yaml:"activatedBy,omitempty" json:"-" validate:"-"`
	Dependencies []Dependency    `yaml:"dependencies,omitempty" json:"dependencies,omitempty" validate:"dive"`
	Templates    []Template      `yaml:"templates,omitempty" json:"templates,omitempty" validate:"dive"`
	Scripts      []Script        `yaml:"scripts,omitempty" json:"scripts,omitempty" validate:"dive"`
	Mods         ModList         `yaml:"mods,omitempty" json:"mods,omitempty" validate:"dive"`
}

// IsEmpty reports whether the stage declares no work.
func (s *Stage) IsEmpty() bool {
	return len(s.Dependencies) == 0 && len(s.Templates) == 0 && len(s.Scripts) == 0 && len(s.Mods) == 0
}

// Feature is a static catalog entry.
type Feature struct {
	ID            string          `yaml:"id" json:"id" validate:"required"`
	Name          string          `yaml:"name" json:"name"`
	Description   string          `yaml:"description,omitempty" json:"description,omitempty"`
	DependsOn     []string        `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty" validate:"dive,required"`
	ActivatedBy   activation.Expr `yaml:"activatedBy,omitempty" json:"-" validate:"-"`
	Configuration []Prompt        `yaml:"configuration,omitempty" json:"configuration,omitempty" validate:"dive"`
	Stages        []Stage         `yaml:"stages" json:"stages" validate:"dive"`
}

// DisplayName returns Name, falling back to ID.
func (f *Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// Stage returns the stage with the given name.
func (f *Feature) Stage(name string) (*Stage, bool) {
	for i := range f.Stages {
		if f.Stages[i].Name == name {
			return &f.Stages[i], true
		}
	}
	return nil, false
}

package plan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/stackgen/stackgen/internal/activation"
	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/codemod"
	"github.com/stackgen/stackgen/internal/dag"
	"github.com/stackgen/stackgen/internal/feature"
	"github.com/stackgen/stackgen/internal/prompt"
	"github.com/stackgen/stackgen/internal/render"
	"go.uber.org/zap"
)

// Resolver builds plans from a feature registry.
type Resolver struct {
	Registry *feature.Registry
	// Prompter answers prompts missing from the model. Defaults to prompt.Defaults.
	Prompter prompt.Prompter
	// Codemods, when set, is used to reject mods naming unknown codemods.
	Codemods *codemod.Registry
	// Templates, when set, expands template sources to the files they write
	// so destination conflicts are found per file.
	Templates fs.FS
	Logger    *zap.Logger
}

// Resolve computes the plan for requested ids. Prompts of every feature in
// the dependency closure are answered into model before any activation
// predicate is evaluated. A missing or invalid answer only fails the plan
// when a feature declaring that prompt passes its activatedBy check. Any
// *ConfigError aborts resolution and no plan is returned.
func (r *Resolver) Resolve(ctx context.Context, requested []string, model *answers.Model) (*Plan, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if model == nil {
		model = answers.New()
	}

	closure, err := r.closure(requested)
	if err != nil {
		return nil, err
	}

	g, order, err := r.order(closure)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved dependency order", zap.Strings("order", order))

	pending, err := r.collectAnswers(ctx, order, model)
	if err != nil {
		return nil, err
	}

	p := &Plan{Requested: append([]string(nil), requested...), Order: order, Answers: model, Graph: g}
	if err := r.activate(p, pending, log); err != nil {
		return nil, err
	}

	if err := r.checkCodemods(p); err != nil {
		return nil, err
	}
	if err := r.checkDestinations(p); err != nil {
		return nil, err
	}

	log.Info("plan resolved",
		zap.Int("features", len(order)),
		zap.Int("stages", len(p.Entries)),
		zap.Strings("activated", p.Activated),
	)
	return p, nil
}

// closure returns every id reachable from requested through dependsOn.
func (r *Resolver) closure(requested []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	type item struct{ id, parent string }

	stack := make([]item, 0, len(requested))
	for i := len(requested) - 1; i >= 0; i-- {
		stack = append(stack, item{id: requested[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[it.id] {
			continue
		}
		f, ok := r.Registry.Get(it.id)
		if !ok {
			if it.parent == "" {
				return nil, configErr("", "%w: %q", ErrUnknownFeature, it.id)
			}
			return nil, configErr(it.parent, "dependsOn: %w: %q", ErrUnknownFeature, it.id)
		}
		seen[it.id] = true
		for i := len(f.DependsOn) - 1; i >= 0; i-- {
			stack = append(stack, item{id: f.DependsOn[i], parent: it.id})
		}
	}
	return seen, nil
}

// order sorts the closure so dependencies come first, breaking ties by
// catalog declaration order.
func (r *Resolver) order(closure map[string]bool) (*dag.DependencyGraph, []string, error) {
	g := dag.NewDependencyGraph()
	for _, f := range r.Registry.Features() {
		if !closure[f.ID] {
			continue
		}
		if err := g.AddNode(f.ID, f.DependsOn); err != nil {
			return nil, nil, configErr(f.ID, "%w", err)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, nil, &ConfigError{Feature: cycle.Path[0], Err: err}
		}
		return nil, nil, &ConfigError{Err: err}
	}
	return g, order, nil
}

// collectAnswers asks every unanswered prompt once, in dependency order.
// Missing and invalid answers are returned by prompt id instead of failing,
// since the features declaring them may never activate.
func (r *Resolver) collectAnswers(ctx context.Context, order []string, model *answers.Model) (map[string]error, error) {
	prompter := r.Prompter
	if prompter == nil {
		prompter = prompt.Defaults{}
	}

	pending := make(map[string]error)
	asked := make(map[string]bool)
	for _, id := range order {
		f, _ := r.Registry.Get(id)
		for i := range f.Configuration {
			p := &f.Configuration[i]
			if asked[p.ID] {
				continue
			}
			asked[p.ID] = true

			if !model.Has(p.ID) {
				v, ok, err := prompter.Ask(ctx, p)
				if errors.Is(err, prompt.ErrRequired) {
					pending[p.ID] = fmt.Errorf("%w: %s", ErrMissingAnswer, p.ID)
					continue
				}
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if err := model.Set(p.ID, v); err != nil {
					return nil, err
				}
			}

			v, _ := model.Get(p.ID)
			if err := ValidateAnswer(p, v); err != nil {
				pending[p.ID] = err
			}
		}
	}
	return pending, nil
}

// ValidateAnswer checks that v has the shape p expects.
func ValidateAnswer(p *feature.Prompt, v any) error {
	switch p.Type {
	case feature.PromptBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: %s must be true or false, got %v", ErrInvalidAnswer, p.ID, v)
		}
	case feature.PromptSelect:
		s, ok := v.(string)
		if !ok || !p.HasOption(s) {
			return fmt.Errorf("%w: %s must be one of %v, got %v", ErrInvalidAnswer, p.ID, optionValues(p), v)
		}
	case feature.PromptMultiSelect:
		list, ok := answers.Normalize(v).([]any)
		if !ok {
			return fmt.Errorf("%w: %s must be a list, got %v", ErrInvalidAnswer, p.ID, v)
		}
		for _, e := range list {
			s, ok := e.(string)
			if !ok || !p.HasOption(s) {
				return fmt.Errorf("%w: %s: %v is not one of %v", ErrInvalidAnswer, p.ID, e, optionValues(p))
			}
		}
	case feature.PromptText:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: %s must be text, got %v", ErrInvalidAnswer, p.ID, v)
		}
	}
	return nil
}

func optionValues(p *feature.Prompt) []string {
	out := make([]string, len(p.Options))
	for i, o := range p.Options {
		out[i] = o.Value
	}
	return out
}

// activate evaluates feature and stage predicates in dependency order.
// A feature joins the active set as soon as its first stage is planned, so
// later stages of the same feature and every later feature see it. The
// executor runs exactly the planned entries and never re-evaluates.
func (r *Resolver) activate(p *Plan, pending map[string]error, log *zap.Logger) error {
	active := activation.NewIDSet()

	for _, id := range p.Order {
		f, _ := r.Registry.Get(id)

		if !activation.Evaluate(f.ActivatedBy.Predicate, p.Answers, active) {
			reason := fmt.Sprintf("activatedBy %s is false", f.ActivatedBy.String())
			p.Skipped = append(p.Skipped, Skip{Feature: id, Reason: reason})
			_ = p.Graph.SetNodeStatus(id, dag.StatusSkipped)
			log.Debug("feature skipped", zap.String("feature", id), zap.String("reason", reason))
			continue
		}
		for i := range f.Configuration {
			if err := pending[f.Configuration[i].ID]; err != nil {
				return &ConfigError{Feature: id, Err: err}
			}
		}

		contributed := 0
		for i := range f.Stages {
			s := &f.Stages[i]
			if !activation.Evaluate(s.ActivatedBy.Predicate, p.Answers, active) {
				reason := fmt.Sprintf("activatedBy %s is false", s.ActivatedBy.String())
				p.Skipped = append(p.Skipped, Skip{Feature: id, Stage: s.Name, Reason: reason})
				log.Debug("stage skipped", zap.String("feature", id), zap.String("stage", s.Name), zap.String("reason", reason))
				continue
			}
			p.Entries = append(p.Entries, Entry{Feature: id, Stage: s.Name, Def: s})
			if contributed == 0 {
				active.Add(id)
				p.Activated = append(p.Activated, id)
				_ = p.Graph.SetNodeStatus(id, dag.StatusActive)
			}
			contributed++
		}

		if contributed == 0 {
			if len(f.Stages) == 0 {
				p.Skipped = append(p.Skipped, Skip{Feature: id, Reason: "feature declares no stages"})
			}
			_ = p.Graph.SetNodeStatus(id, dag.StatusSkipped)
		}
	}
	return nil
}

func (r *Resolver) checkCodemods(p *Plan) error {
	if r.Codemods == nil {
		return nil
	}
	for _, e := range p.Entries {
		for _, fm := range e.Def.Mods {
			for _, name := range fm.Codemods {
				if _, err := r.Codemods.Lookup(name); err != nil {
					return configErr(e.Feature, "stage %s mods %s: %w", e.Stage, fm.Path, err)
				}
			}
		}
	}
	return nil
}

// checkDestinations rejects plans where two features write the same file.
// One feature may target a path more than once.
func (r *Resolver) checkDestinations(p *Plan) error {
	copier := &render.Copier{Source: r.Templates, Vars: p.Answers}
	owners := make(map[string]string)
	for _, e := range p.Entries {
		for _, t := range e.Def.Templates {
			dests, err := r.destinations(copier, t)
			if err != nil {
				return configErr(e.Feature, "stage %s templates: %w", e.Stage, err)
			}
			for _, dest := range dests {
				owner, claimed := owners[dest]
				if claimed && owner != e.Feature {
					return configErr(e.Feature, "stage %s: %w: %s is also written by %s",
						e.Stage, ErrDestinationConflict, dest, owner)
				}
				owners[dest] = e.Feature
			}
		}
	}
	return nil
}

// destinations lists the files t writes. Without a template tree only the
// declared destination is known.
func (r *Resolver) destinations(c *render.Copier, t feature.Template) ([]string, error) {
	if r.Templates != nil {
		return c.Destinations(t)
	}
	dest := render.Substitute(t.Destination, c.Vars)
	if strings.HasSuffix(dest, "/") {
		dest = path.Join(dest, path.Base(render.Substitute(t.Source, c.Vars)))
	}
	return []string{path.Clean(dest)}, nil
}

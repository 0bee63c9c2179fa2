// Package prompt collects answers for feature prompts, either from their
// declared defaults or interactively on a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/feature"
)

// ErrRequired is returned when a required prompt has no answer and no default.
var ErrRequired = errors.New("required answer missing")

// Prompter produces an answer for a prompt. ok is false when the prompt is
// optional and was left unanswered.
type Prompter interface {
	Ask(ctx context.Context, p *feature.Prompt) (value any, ok bool, err error)
}

// Defaults answers every prompt with its declared default. It never blocks
// and is used for non-interactive runs.
type Defaults struct{}

// Ask implements Prompter.
func (Defaults) Ask(_ context.Context, p *feature.Prompt) (any, bool, error) {
	if p.DefaultValue != nil {
		return answers.Normalize(p.DefaultValue), true, nil
	}
	if p.Required {
		return nil, false, fmt.Errorf("prompt %s (%s): %w", p.ID, p.Title, ErrRequired)
	}
	return nil, false, nil
}

type askOneFunc func(p survey.Prompt, response any, opts ...survey.AskOpt) error

// Survey asks prompts on a terminal.
type Survey struct {
	io     SurveyIO
	askOne askOneFunc
}

// NewSurvey creates an interactive prompter bound to io.
func NewSurvey(io SurveyIO) *Survey {
	return &Survey{io: io, askOne: survey.AskOne}
}

// Ask implements Prompter.
func (s *Survey) Ask(ctx context.Context, p *feature.Prompt) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	opts := s.io.AskOptions()
	if p.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	switch p.Type {
	case feature.PromptBoolean:
		def, _ := p.DefaultValue.(bool)
		var v bool
		q := &survey.Confirm{Message: p.Title, Help: p.Description, Default: def}
		if err := s.askOne(q, &v, s.io.AskOptions()...); err != nil {
			return nil, false, fmt.Errorf("asking %s: %w", p.ID, err)
		}
		return v, true, nil

	case feature.PromptSelect:
		labels, values := optionLabels(p)
		q := &survey.Select{
			Message: p.Title,
			Help:    p.Description,
			Options: labels,
			Description: func(_ string, i int) string {
				return p.Options[i].Description
			},
		}
		if def, ok := p.DefaultValue.(string); ok {
			if label, found := labelFor(p, def); found {
				q.Default = label
			}
		}
		var label string
		if err := s.askOne(q, &label, opts...); err != nil {
			return nil, false, fmt.Errorf("asking %s: %w", p.ID, err)
		}
		return values[label], true, nil

	case feature.PromptMultiSelect:
		labels, values := optionLabels(p)
		q := &survey.MultiSelect{Message: p.Title, Help: p.Description, Options: labels}
		if defs, ok := answers.Normalize(p.DefaultValue).([]any); ok {
			var defaults []string
			for _, d := range defs {
				if label, found := labelFor(p, fmt.Sprint(d)); found {
					defaults = append(defaults, label)
				}
			}
			if len(defaults) > 0 {
				q.Default = defaults
			}
		}
		var chosen []string
		if err := s.askOne(q, &chosen, opts...); err != nil {
			return nil, false, fmt.Errorf("asking %s: %w", p.ID, err)
		}
		out := make([]any, len(chosen))
		for i, label := range chosen {
			out[i] = values[label]
		}
		return out, true, nil

	default:
		q := &survey.Input{Message: p.Title, Help: p.Description}
		if p.DefaultValue != nil {
			q.Default = fmt.Sprint(p.DefaultValue)
		}
		var v string
		if err := s.askOne(q, &v, opts...); err != nil {
			return nil, false, fmt.Errorf("asking %s: %w", p.ID, err)
		}
		if v == "" && !p.Required {
			return nil, false, nil
		}
		return v, true, nil
	}
}

func optionLabels(p *feature.Prompt) ([]string, map[string]string) {
	labels := make([]string, len(p.Options))
	values := make(map[string]string, len(p.Options))
	for i, o := range p.Options {
		labels[i] = o.Label
		values[o.Label] = o.Value
	}
	return labels, values
}

func labelFor(p *feature.Prompt, value string) (string, bool) {
	for _, o := range p.Options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

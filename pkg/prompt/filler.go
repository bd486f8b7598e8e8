// Package prompt fills the generator's page forms from a terminal. Each
// control of a rendered form becomes one prompt; answers are written back into
// the page so the next compile serializes them.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-widgetgen/pkg/page"
)

// Option configures a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver. Defaults to NewSurveyDriver(nil).
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithSkip names controls the filler leaves untouched, such as the widget and
// skin selects driven by the picker.
func WithSkip(names ...string) Option {
	return func(f *Filler) {
		for _, name := range names {
			f.skip[strings.TrimSpace(name)] = struct{}{}
		}
	}
}

// Filler asks for form values through a Driver.
type Filler struct {
	driver Driver
	skip   map[string]struct{}
}

// New constructs a Filler.
func New(opts ...Option) *Filler {
	f := &Filler{skip: make(map[string]struct{})}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Driver returns the configured driver.
func (f *Filler) Driver() Driver {
	return f.driver
}

// Choose asks the operator to pick one of options and returns its value.
// Options with an empty value are placeholders and are not offered.
func (f *Filler) Choose(ctx context.Context, message string, options []page.SelectOption) (string, error) {
	var (
		labels []string
		values []string
	)
	def := 0
	for _, opt := range options {
		if opt.Value == "" {
			continue
		}
		if opt.Selected {
			def = len(values)
		}
		labels = append(labels, optionLabel(opt))
		values = append(values, opt.Value)
	}
	if len(values) == 0 {
		return "", ErrNoChoice
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: def})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(values) {
		return "", fmt.Errorf("prompt: selection %d out of range", idx)
	}
	return values[idx], nil
}

// Fill prompts for every control of the form matching formSelector and writes
// the answers into pg.
func (f *Filler) Fill(ctx context.Context, pg *page.Page, formSelector string) error {
	if pg == nil {
		return errors.New("prompt: page is required")
	}
	controls, err := pg.Controls(formSelector)
	if err != nil {
		return fmt.Errorf("prompt: list controls of %s: %w", formSelector, err)
	}
	for _, control := range controls {
		if _, skip := f.skip[control.Name]; skip {
			continue
		}
		value, err := f.ask(ctx, control)
		if err != nil {
			return err
		}
		if err := pg.SetField(formSelector, control.Name, value); err != nil {
			return fmt.Errorf("prompt: set %s: %w", control.Name, err)
		}
	}
	return nil
}

func (f *Filler) ask(ctx context.Context, control page.Control) (string, error) {
	switch control.Kind {
	case "checkbox":
		on, err := f.driver.Confirm(ctx, ConfirmConfig{Message: control.Label, Default: control.Checked})
		if err != nil {
			return "", err
		}
		if on {
			return "1", nil
		}
		return "", nil
	case "select":
		return f.Choose(ctx, control.Label, control.Options)
	case "textarea":
		return f.driver.TextArea(ctx, TextAreaConfig{Message: control.Label, Default: control.Value})
	case "hidden":
		return control.Value, nil
	default:
		cfg := InputConfig{Message: control.Label, Default: control.Value}
		if control.Required {
			label := control.Label
			cfg.Validator = func(v string) error {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("%s is required", label)
				}
				return nil
			}
		}
		return f.driver.Input(ctx, cfg)
	}
}

func optionLabel(opt page.SelectOption) string {
	if label := strings.TrimSpace(opt.Label); label != "" {
		return label
	}
	return opt.Value
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package templates ships the built-in smart playlist templates. The data is
// embedded reference data, loaded once per process and immutable afterwards.
package templates

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/huginn_podcast/internal/rules"
)

//go:embed templates.yaml
var rawTemplates []byte

// Template is a named, categorized, pre-built rule set used to seed new
// smart playlists. Instantiation copies the rule set by value.
type Template struct {
	Name        string
	Description string
	Category    string
	Rules       rules.Set
}

// Registry holds the loaded template table.
type Registry struct {
	templates  []Template
	categories []string
}

type templateDoc struct {
	Templates []templateSpec `yaml:"templates"`
}

type templateSpec struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Category    string     `yaml:"category"`
	Combinator  string     `yaml:"combinator"`
	Rules       []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Field    string   `yaml:"field"`
	Op       string   `yaml:"op"`
	Negate   bool     `yaml:"negate"`
	Status   string   `yaml:"status"`
	Download string   `yaml:"download"`
	Period   string   `yaml:"period"`
	Seconds  int64    `yaml:"seconds"`
	Rating   *int     `yaml:"rating"`
	Text     *string  `yaml:"text"`
	Flag     *bool    `yaml:"flag"`
	Fraction *float64 `yaml:"fraction"`
}

// Load parses the embedded template table and validates every rule set.
func Load() (*Registry, error) {
	var doc templateDoc
	if err := yaml.Unmarshal(rawTemplates, &doc); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	reg := &Registry{}
	seen := map[string]bool{}

	for _, spec := range doc.Templates {
		tpl, err := buildTemplate(spec)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", spec.Name, err)
		}
		reg.templates = append(reg.templates, tpl)
		if !seen[tpl.Category] {
			seen[tpl.Category] = true
			reg.categories = append(reg.categories, tpl.Category)
		}
	}

	return reg, nil
}

func buildTemplate(spec templateSpec) (Template, error) {
	combinator := rules.Combinator(spec.Combinator)
	if spec.Combinator == "" {
		combinator = rules.CombineAll
	}

	set := rules.NewSet(combinator)
	for _, rs := range spec.Rules {
		rule, err := buildRule(rs)
		if err != nil {
			return Template{}, err
		}
		set.Rules = append(set.Rules, rule)
	}

	if err := set.Validate(); err != nil {
		return Template{}, err
	}

	return Template{
		Name:        spec.Name,
		Description: spec.Description,
		Category:    spec.Category,
		Rules:       set,
	}, nil
}

func buildRule(spec ruleSpec) (rules.Rule, error) {
	rule, err := rules.New(rules.Field(spec.Field))
	if err != nil {
		return rules.Rule{}, err
	}
	if spec.Op != "" {
		rule.Op = rules.Operator(spec.Op)
	}
	rule.Negate = spec.Negate
	overrideValue(&rule, spec)
	return rule, rule.Validate()
}

// overrideValue replaces default value contents while keeping the field's
// value kind; a spec entry for a different kind is simply ignored.
func overrideValue(rule *rules.Rule, spec ruleSpec) {
	switch rule.Value.Kind {
	case rules.KindPlayStatus:
		if spec.Status != "" {
			rule.Value = rules.StatusValue(rules.PlayStatus(spec.Status))
		}
	case rules.KindDownloadStatus:
		if spec.Download != "" {
			rule.Value = rules.DownloadValue(rules.DownloadStatus(spec.Download))
		}
	case rules.KindPeriod:
		if spec.Period != "" {
			rule.Value = rules.PeriodValue(rules.Period(spec.Period))
		}
	case rules.KindInterval:
		if spec.Seconds > 0 {
			rule.Value = rules.IntervalValue(time.Duration(spec.Seconds) * time.Second)
		}
	case rules.KindInt:
		if spec.Rating != nil {
			rule.Value = rules.IntValue(*spec.Rating)
		}
	case rules.KindString:
		if spec.Text != nil {
			rule.Value = rules.StringValue(*spec.Text)
		}
	case rules.KindBool:
		if spec.Flag != nil {
			rule.Value = rules.BoolValue(*spec.Flag)
		}
	case rules.KindFraction:
		if spec.Fraction != nil {
			rule.Value = rules.FractionValue(*spec.Fraction)
		}
	}
}

// All returns every template in declaration order.
func (r *Registry) All() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Categories returns category tags in first-appearance order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out
}

// Grouped returns templates keyed by category for picker UIs.
func (r *Registry) Grouped() map[string][]Template {
	out := make(map[string][]Template, len(r.categories))
	for _, tpl := range r.templates {
		out[tpl.Category] = append(out[tpl.Category], tpl)
	}
	return out
}

// Find looks a template up by name.
func (r *Registry) Find(name string) (Template, bool) {
	for _, tpl := range r.templates {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return Template{}, false
}

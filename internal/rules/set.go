/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"errors"
	"fmt"
)

// Combinator joins per-rule results across a set.
type Combinator string

const (
	CombineAll Combinator = "all" // every rule must match
	CombineAny Combinator = "any" // at least one rule must match
)

var ErrUnknownCombinator = errors.New("rules: unknown combinator")

// Set is an ordered list of rules combined with a single operator. Mixed
// logic sub-grouping is not supported.
type Set struct {
	Combinator Combinator `json:"combinator"`
	Rules      []Rule     `json:"rules"`
}

// NewSet builds a set, defaulting an empty combinator to CombineAll.
func NewSet(combinator Combinator, rules ...Rule) Set {
	if combinator == "" {
		combinator = CombineAll
	}
	return Set{Combinator: combinator, Rules: rules}
}

// Validate checks the combinator and every rule.
func (s Set) Validate() error {
	if s.Combinator != CombineAll && s.Combinator != CombineAny {
		return fmt.Errorf("%w: %q", ErrUnknownCombinator, s.Combinator)
	}
	for _, rule := range s.Rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone copies the set by value so callers can share sets without aliasing.
func (s Set) Clone() Set {
	out := Set{Combinator: s.Combinator}
	if len(s.Rules) > 0 {
		out.Rules = make([]Rule, len(s.Rules))
		copy(out.Rules, s.Rules)
	}
	return out
}

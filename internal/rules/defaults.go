/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"fmt"
	"time"
)

type fieldSpec struct {
	operators []Operator
	valueKind ValueKind
	defaultOp Operator
	defaultFn func() Value
}

// fieldSpecs is the single source of truth for which operator and value kind
// a field accepts. Validation happens at construction, not at evaluation.
var fieldSpecs = map[Field]fieldSpec{
	FieldPlayStatus: {
		operators: []Operator{OpEquals, OpNotEquals},
		valueKind: KindPlayStatus,
		defaultOp: OpEquals,
		defaultFn: func() Value { return StatusValue(StatusUnplayed) },
	},
	FieldDownloadStatus: {
		operators: []Operator{OpEquals, OpNotEquals},
		valueKind: KindDownloadStatus,
		defaultOp: OpEquals,
		defaultFn: func() Value { return DownloadValue(DownloadComplete) },
	},
	FieldDateAdded: {
		operators: []Operator{OpWithinLast},
		valueKind: KindPeriod,
		defaultOp: OpWithinLast,
		defaultFn: func() Value { return PeriodValue(PeriodWeek) },
	},
	FieldPublishDate: {
		operators: []Operator{OpWithinLast},
		valueKind: KindPeriod,
		defaultOp: OpWithinLast,
		defaultFn: func() Value { return PeriodValue(PeriodWeek) },
	},
	FieldDuration: {
		operators: []Operator{OpGreaterThan, OpLessThan},
		valueKind: KindInterval,
		defaultOp: OpGreaterThan,
		defaultFn: func() Value { return IntervalValue(30 * time.Minute) },
	},
	FieldRating: {
		operators: []Operator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan},
		valueKind: KindInt,
		defaultOp: OpGreaterThan,
		defaultFn: func() Value { return IntValue(3) },
	},
	FieldPodcast: {
		operators: []Operator{OpEquals, OpNotEquals, OpContains},
		valueKind: KindString,
		defaultOp: OpEquals,
		defaultFn: func() Value { return StringValue("") },
	},
	FieldTitle: {
		operators: []Operator{OpEquals, OpContains},
		valueKind: KindString,
		defaultOp: OpContains,
		defaultFn: func() Value { return StringValue("") },
	},
	FieldDescription: {
		operators: []Operator{OpContains},
		valueKind: KindString,
		defaultOp: OpContains,
		defaultFn: func() Value { return StringValue("") },
	},
	FieldFavorited: {
		operators: []Operator{OpEquals},
		valueKind: KindBool,
		defaultOp: OpEquals,
		defaultFn: func() Value { return BoolValue(true) },
	},
	FieldBookmarked: {
		operators: []Operator{OpEquals},
		valueKind: KindBool,
		defaultOp: OpEquals,
		defaultFn: func() Value { return BoolValue(true) },
	},
	FieldArchived: {
		operators: []Operator{OpEquals},
		valueKind: KindBool,
		defaultOp: OpEquals,
		defaultFn: func() Value { return BoolValue(false) },
	},
	FieldPlaybackPosition: {
		operators: []Operator{OpGreaterThan, OpLessThan},
		valueKind: KindFraction,
		defaultOp: OpGreaterThan,
		defaultFn: func() Value { return FractionValue(0) },
	},
}

// DefaultFor returns the default operator and value for a field. Callers use
// it on every field-type change instead of migrating the old pairing.
func DefaultFor(field Field) (Operator, Value, error) {
	spec, ok := fieldSpecs[field]
	if !ok {
		return "", Value{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return spec.defaultOp, spec.defaultFn(), nil
}

// LegalOperators returns the operators a field accepts, in preference order.
func LegalOperators(field Field) []Operator {
	spec, ok := fieldSpecs[field]
	if !ok {
		return nil
	}
	out := make([]Operator, len(spec.operators))
	copy(out, spec.operators)
	return out
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Field selects the episode attribute a rule tests.
type Field string

const (
	FieldPlayStatus       Field = "play_status"
	FieldDownloadStatus   Field = "download_status"
	FieldDateAdded        Field = "date_added"
	FieldPublishDate      Field = "publish_date"
	FieldDuration         Field = "duration"
	FieldRating           Field = "rating"
	FieldPodcast          Field = "podcast"
	FieldTitle            Field = "title"
	FieldDescription      Field = "description"
	FieldFavorited        Field = "is_favorited"
	FieldBookmarked       Field = "is_bookmarked"
	FieldArchived         Field = "is_archived"
	FieldPlaybackPosition Field = "playback_position"
)

// Operator is the comparison applied between attribute and value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
	OpWithinLast  Operator = "within_last"
)

var (
	ErrUnknownField    = errors.New("rules: unknown field")
	ErrIllegalOperator = errors.New("rules: operator not legal for field")
	ErrValueKind       = errors.New("rules: value kind not legal for field")
)

// Rule is a single typed predicate over one episode attribute.
type Rule struct {
	ID     string   `json:"id"`
	Field  Field    `json:"field"`
	Op     Operator `json:"op"`
	Value  Value    `json:"value"`
	Negate bool     `json:"negate,omitempty"`
}

// New creates a rule for field with the field's default operator and value.
func New(field Field) (Rule, error) {
	op, value, err := DefaultFor(field)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		ID:    uuid.NewString(),
		Field: field,
		Op:    op,
		Value: value,
	}, nil
}

// SetField switches the rule to a new field, resetting operator and value to
// the new field's defaults. Stale operator/value pairings are never retained;
// the evaluator cannot interpret them.
func (r *Rule) SetField(field Field) error {
	op, value, err := DefaultFor(field)
	if err != nil {
		return err
	}
	r.Field = field
	r.Op = op
	r.Value = value
	return nil
}

// Validate checks the rule against the field's legal operator and value kind.
func (r Rule) Validate() error {
	spec, ok := fieldSpecs[r.Field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, r.Field)
	}
	legal := false
	for _, op := range spec.operators {
		if op == r.Op {
			legal = true
			break
		}
	}
	if !legal {
		return fmt.Errorf("%w: %q on %q", ErrIllegalOperator, r.Op, r.Field)
	}
	if r.Value.Kind != spec.valueKind {
		return fmt.Errorf("%w: %q carries %q, field %q wants %q", ErrValueKind, r.ID, r.Value.Kind, r.Field, spec.valueKind)
	}
	return nil
}

// Fields lists every legal rule field.
func Fields() []Field {
	return []Field{
		FieldPlayStatus,
		FieldDownloadStatus,
		FieldDateAdded,
		FieldPublishDate,
		FieldDuration,
		FieldRating,
		FieldPodcast,
		FieldTitle,
		FieldDescription,
		FieldFavorited,
		FieldBookmarked,
		FieldArchived,
		FieldPlaybackPosition,
	}
}

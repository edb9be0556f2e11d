/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package smartlist implements the filter, sort, and limit pipeline that
// turns a rule set and an episode snapshot into an ordered result list. All
// functions are pure; callers supply the episode snapshot and own all state.
package smartlist

import (
	"strings"
	"time"

	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
)

// Matches reports whether one episode satisfies a rule set at the given
// instant. An empty rule set matches nothing.
func Matches(ep models.Episode, set rules.Set, now time.Time) bool {
	if len(set.Rules) == 0 {
		return false
	}

	for _, rule := range set.Rules {
		matched := rawMatch(ep, rule, now)
		if rule.Negate {
			matched = !matched
		}

		switch set.Combinator {
		case rules.CombineAny:
			if matched {
				return true
			}
		default:
			if !matched {
				return false
			}
		}
	}

	return set.Combinator != rules.CombineAny
}

// rawMatch evaluates the predicate before negation. A missing or unknown
// episode attribute is a non-match, never an error.
func rawMatch(ep models.Episode, rule rules.Rule, now time.Time) bool {
	switch rule.Field {
	case rules.FieldPlayStatus:
		return compareEquality(rule.Op, ep.PlayStatus() == rule.Value.Status)
	case rules.FieldDownloadStatus:
		return compareEquality(rule.Op, ep.DownloadStatus() == rule.Value.Download)
	case rules.FieldDateAdded:
		return withinPeriod(ep.AddedAt, rule, now)
	case rules.FieldPublishDate:
		return withinPeriod(ep.PublishedAt, rule, now)
	case rules.FieldDuration:
		if ep.Duration == nil {
			return false
		}
		return compareOrdering(rule.Op, *ep.Duration, rule.Value.Interval())
	case rules.FieldRating:
		if ep.Rating == nil {
			return false
		}
		return compareRating(rule.Op, *ep.Rating, rule.Value.Int)
	case rules.FieldPodcast:
		return compareText(rule.Op, ep.PodcastTitle, rule.Value.Str)
	case rules.FieldTitle:
		return compareText(rule.Op, ep.Title, rule.Value.Str)
	case rules.FieldDescription:
		return compareText(rule.Op, ep.Description, rule.Value.Str)
	case rules.FieldFavorited:
		return rule.Op == rules.OpEquals && ep.Favorited == rule.Value.Bool
	case rules.FieldBookmarked:
		return rule.Op == rules.OpEquals && ep.Bookmarked == rule.Value.Bool
	case rules.FieldArchived:
		return rule.Op == rules.OpEquals && ep.Archived == rule.Value.Bool
	case rules.FieldPlaybackPosition:
		progress, known := ep.Progress()
		if !known {
			return false
		}
		switch rule.Op {
		case rules.OpGreaterThan:
			return progress > rule.Value.Fraction
		case rules.OpLessThan:
			return progress < rule.Value.Fraction
		}
		return false
	default:
		return false
	}
}

func compareEquality(op rules.Operator, equal bool) bool {
	switch op {
	case rules.OpEquals:
		return equal
	case rules.OpNotEquals:
		return !equal
	default:
		return false
	}
}

func compareOrdering(op rules.Operator, have, want time.Duration) bool {
	switch op {
	case rules.OpGreaterThan:
		return have > want
	case rules.OpLessThan:
		return have < want
	default:
		return false
	}
}

func compareRating(op rules.Operator, have, want int) bool {
	switch op {
	case rules.OpEquals:
		return have == want
	case rules.OpNotEquals:
		return have != want
	case rules.OpGreaterThan:
		return have > want
	case rules.OpLessThan:
		return have < want
	default:
		return false
	}
}

func compareText(op rules.Operator, have, want string) bool {
	switch op {
	case rules.OpEquals:
		return strings.EqualFold(have, want)
	case rules.OpNotEquals:
		return !strings.EqualFold(have, want)
	case rules.OpContains:
		return strings.Contains(strings.ToLower(have), strings.ToLower(want))
	default:
		return false
	}
}

func withinPeriod(ts *time.Time, rule rules.Rule, now time.Time) bool {
	if ts == nil || rule.Op != rules.OpWithinLast {
		return false
	}
	cutoff := rule.Value.Period.Cutoff(now)
	return !ts.Before(cutoff) && !ts.After(now)
}

// Evaluate filters the snapshot by the rule set, preserving input order.
func Evaluate(set rules.Set, episodes []models.Episode, now time.Time) []models.Episode {
	matched := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if Matches(ep, set, now) {
			matched = append(matched, ep)
		}
	}
	return matched
}

// Limit truncates the result to the first max elements. A max of zero or
// less passes the input through unchanged.
func Limit(episodes []models.Episode, max int) []models.Episode {
	if max <= 0 || len(episodes) <= max {
		return episodes
	}
	return episodes[:max]
}

// EvaluateSmartPlaylist runs the full pipeline for a smart playlist. The
// filter, sort, limit order is deliberate: sorting before limiting keeps the
// best matches under the sort order rather than an arbitrary prefix.
func EvaluateSmartPlaylist(pl models.SmartPlaylist, episodes []models.Episode, now time.Time) []models.Episode {
	return Preview(pl.Rules, pl.SortKey, pl.SortDescending, pl.MaxEpisodes, episodes, now)
}

// Preview computes the same pipeline from loose parts. Rule editors call it
// for live results; it is the single evaluation path, so preview and
// persisted evaluation cannot drift.
func Preview(set rules.Set, key models.SortKey, descending bool, max int, episodes []models.Episode, now time.Time) []models.Episode {
	return Limit(Sort(Evaluate(set, episodes, now), key, descending), max)
}

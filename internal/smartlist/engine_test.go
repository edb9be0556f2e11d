/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"testing"
	"time"

	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func durationPtr(d time.Duration) *time.Duration { return &d }

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(n int) *int { return &n }

func rule(field rules.Field, op rules.Operator, value rules.Value) rules.Rule {
	return rules.Rule{ID: "r-" + string(field), Field: field, Op: op, Value: value}
}

func negated(r rules.Rule) rules.Rule {
	r.Negate = true
	return r
}

func TestRawMatchPerField(t *testing.T) {
	ep := models.Episode{
		ID:            "ep1",
		PodcastTitle:  "The Daily Brief",
		Title:         "Deep Dive: Compilers",
		Description:   "A long walk through parser internals",
		Duration:      durationPtr(45 * time.Minute),
		PublishedAt:   timePtr(testNow.AddDate(0, 0, -2)),
		AddedAt:       timePtr(testNow.AddDate(0, 0, -1)),
		Played:        false,
		Position:      15 * time.Minute,
		DownloadState: models.DownloadStateComplete,
		Rating:        intPtr(4),
		Favorited:     true,
	}

	tests := []struct {
		name string
		rule rules.Rule
		want bool
	}{
		{"play status in progress", rule(rules.FieldPlayStatus, rules.OpEquals, rules.StatusValue(rules.StatusInProgress)), true},
		{"play status not played", rule(rules.FieldPlayStatus, rules.OpNotEquals, rules.StatusValue(rules.StatusPlayed)), true},
		{"play status unplayed", rule(rules.FieldPlayStatus, rules.OpEquals, rules.StatusValue(rules.StatusUnplayed)), false},
		{"downloaded", rule(rules.FieldDownloadStatus, rules.OpEquals, rules.DownloadValue(rules.DownloadComplete)), true},
		{"not queued", rule(rules.FieldDownloadStatus, rules.OpNotEquals, rules.DownloadValue(rules.DownloadQueued)), true},
		{"added this week", rule(rules.FieldDateAdded, rules.OpWithinLast, rules.PeriodValue(rules.PeriodWeek)), true},
		{"published last day", rule(rules.FieldPublishDate, rules.OpWithinLast, rules.PeriodValue(rules.PeriodDay)), false},
		{"published this month", rule(rules.FieldPublishDate, rules.OpWithinLast, rules.PeriodValue(rules.PeriodMonth)), true},
		{"longer than 30m", rule(rules.FieldDuration, rules.OpGreaterThan, rules.IntervalValue(30*time.Minute)), true},
		{"shorter than 30m", rule(rules.FieldDuration, rules.OpLessThan, rules.IntervalValue(30*time.Minute)), false},
		{"rating above 3", rule(rules.FieldRating, rules.OpGreaterThan, rules.IntValue(3)), true},
		{"rating exactly 4", rule(rules.FieldRating, rules.OpEquals, rules.IntValue(4)), true},
		{"podcast equals case-insensitive", rule(rules.FieldPodcast, rules.OpEquals, rules.StringValue("the daily brief")), true},
		{"podcast contains", rule(rules.FieldPodcast, rules.OpContains, rules.StringValue("daily")), true},
		{"title contains", rule(rules.FieldTitle, rules.OpContains, rules.StringValue("compilers")), true},
		{"description contains", rule(rules.FieldDescription, rules.OpContains, rules.StringValue("parser")), true},
		{"favorited", rule(rules.FieldFavorited, rules.OpEquals, rules.BoolValue(true)), true},
		{"bookmarked", rule(rules.FieldBookmarked, rules.OpEquals, rules.BoolValue(true)), false},
		{"not archived", rule(rules.FieldArchived, rules.OpEquals, rules.BoolValue(false)), true},
		{"progress above a quarter", rule(rules.FieldPlaybackPosition, rules.OpGreaterThan, rules.FractionValue(0.25)), true},
		{"progress below a quarter", rule(rules.FieldPlaybackPosition, rules.OpLessThan, rules.FractionValue(0.25)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := rules.NewSet(rules.CombineAll, tt.rule)
			if got := Matches(ep, set, testNow); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingAttributesNeverMatch(t *testing.T) {
	// No duration, dates, or rating; every rule over them is a non-match.
	bare := models.Episode{ID: "bare", Title: "Untitled"}

	tests := []struct {
		name string
		rule rules.Rule
	}{
		{"duration greater", rule(rules.FieldDuration, rules.OpGreaterThan, rules.IntervalValue(0))},
		{"duration less", rule(rules.FieldDuration, rules.OpLessThan, rules.IntervalValue(time.Hour))},
		{"publish date", rule(rules.FieldPublishDate, rules.OpWithinLast, rules.PeriodValue(rules.PeriodYear))},
		{"date added", rule(rules.FieldDateAdded, rules.OpWithinLast, rules.PeriodValue(rules.PeriodYear))},
		{"rating not equals", rule(rules.FieldRating, rules.OpNotEquals, rules.IntValue(5))},
		{"progress", rule(rules.FieldPlaybackPosition, rules.OpGreaterThan, rules.FractionValue(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := rules.NewSet(rules.CombineAll, tt.rule)
			if Matches(bare, set, testNow) {
				t.Error("rule over missing attribute matched")
			}
			// Negation flips the raw non-match to a match.
			negSet := rules.NewSet(rules.CombineAll, negated(tt.rule))
			if !Matches(bare, negSet, testNow) {
				t.Error("negated rule over missing attribute did not match")
			}
		})
	}
}

func TestCombinatorSoundness(t *testing.T) {
	favorite := models.Episode{ID: "a", Favorited: true, Archived: true}
	archived := models.Episode{ID: "b", Archived: true}
	neither := models.Episode{ID: "c"}

	favRule := rule(rules.FieldFavorited, rules.OpEquals, rules.BoolValue(true))
	arcRule := rule(rules.FieldArchived, rules.OpEquals, rules.BoolValue(true))

	all := rules.NewSet(rules.CombineAll, favRule, arcRule)
	any := rules.NewSet(rules.CombineAny, favRule, arcRule)

	tests := []struct {
		name    string
		set     rules.Set
		ep      models.Episode
		matches bool
	}{
		{"all with both true", all, favorite, true},
		{"all with one true", all, archived, false},
		{"all with none true", all, neither, false},
		{"any with both true", any, favorite, true},
		{"any with one true", any, archived, true},
		{"any with none true", any, neither, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.ep, tt.set, testNow); got != tt.matches {
				t.Errorf("Matches() = %v, want %v", got, tt.matches)
			}
		})
	}
}

func TestNegationInsideCombination(t *testing.T) {
	ep := models.Episode{ID: "a", Favorited: true}

	set := rules.NewSet(rules.CombineAll,
		rule(rules.FieldFavorited, rules.OpEquals, rules.BoolValue(true)),
		negated(rule(rules.FieldArchived, rules.OpEquals, rules.BoolValue(true))),
	)

	if !Matches(ep, set, testNow) {
		t.Error("favorited, non-archived episode should match")
	}

	ep.Archived = true
	if Matches(ep, set, testNow) {
		t.Error("archived episode should fail the negated rule")
	}
}

func TestEmptyRuleSetMatchesNothing(t *testing.T) {
	ep := models.Episode{ID: "a", Favorited: true}

	for _, combinator := range []rules.Combinator{rules.CombineAll, rules.CombineAny} {
		set := rules.NewSet(combinator)
		if Matches(ep, set, testNow) {
			t.Errorf("empty %s set matched", combinator)
		}
		if got := Evaluate(set, []models.Episode{ep}, testNow); len(got) != 0 {
			t.Errorf("empty %s set evaluated to %d episodes", combinator, len(got))
		}
	}
}

func TestEvaluatePreservesInputOrder(t *testing.T) {
	episodes := []models.Episode{
		{ID: "a", Favorited: true},
		{ID: "b"},
		{ID: "c", Favorited: true},
	}
	set := rules.NewSet(rules.CombineAll, rule(rules.FieldFavorited, rules.OpEquals, rules.BoolValue(true)))

	got := Evaluate(set, episodes, testNow)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("Evaluate() = %v, want [a c]", ids(got))
	}
}

func TestSortStableTieBreak(t *testing.T) {
	published := testNow.AddDate(0, 0, -3)
	episodes := []models.Episode{
		{ID: "first", PublishedAt: timePtr(published)},
		{ID: "second", PublishedAt: timePtr(published)},
		{ID: "third", PublishedAt: timePtr(published)},
	}

	got := Sort(episodes, models.SortPublishDate, true)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("tie order broken: got %v, want %v", ids(got), want)
		}
	}
}

func TestSortMissingKeySortsLast(t *testing.T) {
	episodes := []models.Episode{
		{ID: "undated"},
		{ID: "dated", PublishedAt: timePtr(testNow)},
	}

	for _, descending := range []bool{true, false} {
		got := Sort(episodes, models.SortPublishDate, descending)
		if got[len(got)-1].ID != "undated" {
			t.Errorf("descending=%v: undated episode not last: %v", descending, ids(got))
		}
	}
}

func TestSortPrecedesLimit(t *testing.T) {
	older := models.Episode{ID: "older", PublishedAt: timePtr(testNow.AddDate(0, 0, -9))}
	newer := models.Episode{ID: "newer", PublishedAt: timePtr(testNow.AddDate(0, 0, -1))}

	pl := models.SmartPlaylist{
		Rules: rules.NewSet(rules.CombineAll,
			rule(rules.FieldPublishDate, rules.OpWithinLast, rules.PeriodValue(rules.PeriodMonth))),
		SortKey:        models.SortPublishDate,
		SortDescending: true,
		MaxEpisodes:    1,
	}

	// Input order puts the older episode first; the cap must still retain
	// the newest under the sort order.
	got := EvaluateSmartPlaylist(pl, []models.Episode{older, newer}, testNow)
	if len(got) != 1 || got[0].ID != "newer" {
		t.Fatalf("EvaluateSmartPlaylist() = %v, want [newer]", ids(got))
	}
}

func TestLimitUnboundedAndOversized(t *testing.T) {
	episodes := []models.Episode{{ID: "a"}, {ID: "b"}}

	if got := Limit(episodes, 0); len(got) != 2 {
		t.Errorf("Limit(0) truncated to %d", len(got))
	}
	if got := Limit(episodes, 5); len(got) != 2 {
		t.Errorf("Limit(5) returned %d", len(got))
	}
	if got := Limit(episodes, 1); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Limit(1) = %v", ids(got))
	}
}

func TestPreviewMatchesEvaluation(t *testing.T) {
	episodes := []models.Episode{
		{ID: "a", Favorited: true, PublishedAt: timePtr(testNow.AddDate(0, 0, -1))},
		{ID: "b", Favorited: true, PublishedAt: timePtr(testNow.AddDate(0, 0, -5))},
		{ID: "c"},
	}

	pl := models.SmartPlaylist{
		Rules:          rules.NewSet(rules.CombineAll, rule(rules.FieldFavorited, rules.OpEquals, rules.BoolValue(true))),
		SortKey:        models.SortPublishDate,
		SortDescending: true,
		MaxEpisodes:    10,
	}

	fromPlaylist := EvaluateSmartPlaylist(pl, episodes, testNow)
	fromPreview := Preview(pl.Rules, pl.SortKey, pl.SortDescending, pl.MaxEpisodes, episodes, testNow)

	if len(fromPlaylist) != len(fromPreview) {
		t.Fatalf("preview drift: %v vs %v", ids(fromPlaylist), ids(fromPreview))
	}
	for i := range fromPlaylist {
		if fromPlaylist[i].ID != fromPreview[i].ID {
			t.Fatalf("preview drift at %d: %v vs %v", i, ids(fromPlaylist), ids(fromPreview))
		}
	}
}

func TestSortResume(t *testing.T) {
	episodes := []models.Episode{
		{ID: "done", Played: true, Position: time.Hour},
		{ID: "barely", Position: time.Minute},
		{ID: "deep", Position: 40 * time.Minute},
		{ID: "fresh"},
	}

	got := Sort(episodes, models.SortResume, false)
	want := []string{"deep", "barely", "done", "fresh"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("resume order = %v, want %v", ids(got), want)
		}
	}
}

func ids(episodes []models.Episode) []string {
	out := make([]string, len(episodes))
	for i, ep := range episodes {
		out[i] = ep.ID
	}
	return out
}

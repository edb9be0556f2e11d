/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlists

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
	"github.com/friendsincode/huginn_podcast/internal/smartlist"
	"github.com/friendsincode/huginn_podcast/internal/templates"
)

type memStore struct {
	manual map[string]models.ManualPlaylist
	smart  map[string]models.SmartPlaylist
}

func newMemStore() *memStore {
	return &memStore{
		manual: map[string]models.ManualPlaylist{},
		smart:  map[string]models.SmartPlaylist{},
	}
}

func (m *memStore) ManualPlaylists(context.Context) ([]models.ManualPlaylist, error) {
	out := make([]models.ManualPlaylist, 0, len(m.manual))
	for _, p := range m.manual {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) ManualPlaylist(_ context.Context, id string) (models.ManualPlaylist, bool, error) {
	p, ok := m.manual[id]
	return p, ok, nil
}

func (m *memStore) SaveManualPlaylist(_ context.Context, p models.ManualPlaylist) error {
	m.manual[p.ID] = p
	return nil
}

func (m *memStore) DeleteManualPlaylist(_ context.Context, id string) error {
	delete(m.manual, id)
	return nil
}

func (m *memStore) SmartPlaylists(context.Context) ([]models.SmartPlaylist, error) {
	out := make([]models.SmartPlaylist, 0, len(m.smart))
	for _, p := range m.smart {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) SmartPlaylist(_ context.Context, id string) (models.SmartPlaylist, bool, error) {
	p, ok := m.smart[id]
	return p, ok, nil
}

func (m *memStore) SaveSmartPlaylist(_ context.Context, p models.SmartPlaylist) error {
	m.smart[p.ID] = p
	return nil
}

func (m *memStore) DeleteSmartPlaylist(_ context.Context, id string) error {
	delete(m.smart, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store, nil, zerolog.Nop())
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, store
}

func mustCreateManual(t *testing.T, svc *Service, name string) models.ManualPlaylist {
	t.Helper()
	p, err := svc.CreateManual(context.Background(), name, "")
	if err != nil {
		t.Fatalf("CreateManual(%q): %v", name, err)
	}
	if p == nil {
		t.Fatalf("CreateManual(%q) returned nil", name)
	}
	return *p
}

func TestCreateManualTrimsName(t *testing.T) {
	svc, _ := newTestService(t)

	p := mustCreateManual(t, svc, "  Morning Drive  ")
	if p.Name != "Morning Drive" {
		t.Fatalf("name = %q, want %q", p.Name, "Morning Drive")
	}
}

func TestCreateManualEmptyNameIsSilentNoOp(t *testing.T) {
	svc, store := newTestService(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		p, err := svc.CreateManual(context.Background(), name, "")
		if err != nil {
			t.Fatalf("CreateManual(%q): %v", name, err)
		}
		if p != nil {
			t.Fatalf("CreateManual(%q) created %v, want nil", name, p)
		}
	}
	if len(store.manual) != 0 {
		t.Fatalf("store holds %d playlists, want 0", len(store.manual))
	}
}

func TestAddEpisodeIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := mustCreateManual(t, svc, "Queue")

	for i := 0; i < 3; i++ {
		if err := svc.AddEpisode(ctx, p.ID, "ep-1"); err != nil {
			t.Fatalf("AddEpisode: %v", err)
		}
	}
	if err := svc.AddEpisodes(ctx, p.ID, []string{"ep-2", "ep-1", "ep-3"}); err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}

	got := store.manual[p.ID].EpisodeIDs
	want := []string{"ep-1", "ep-2", "ep-3"}
	if !equalIDs(got, want) {
		t.Fatalf("episodes = %v, want %v", got, want)
	}
}

func TestDeleteManualIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := mustCreateManual(t, svc, "Gone")

	if err := svc.DeleteManual(ctx, p.ID); err != nil {
		t.Fatalf("DeleteManual: %v", err)
	}
	if err := svc.DeleteManual(ctx, p.ID); err != nil {
		t.Fatalf("second DeleteManual: %v", err)
	}
	if err := svc.DeleteManual(ctx, "never-existed"); err != nil {
		t.Fatalf("DeleteManual(unknown): %v", err)
	}
	if len(store.manual) != 0 {
		t.Fatalf("store holds %d playlists, want 0", len(store.manual))
	}
}

func TestDeleteManualAtResolvesOffsetsOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreateManual(t, svc, "A")
	mustCreateManual(t, svc, "B")
	c := mustCreateManual(t, svc, "C")

	if err := svc.DeleteManualAt(ctx, []int{1, 99, -2, 1}); err != nil {
		t.Fatalf("DeleteManualAt: %v", err)
	}

	remaining, err := svc.Manuals(ctx)
	if err != nil {
		t.Fatalf("Manuals: %v", err)
	}
	if len(remaining) != 2 || remaining[0].ID != a.ID || remaining[1].ID != c.ID {
		t.Fatalf("remaining = %v", names(remaining))
	}
}

func TestReorder(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		from []int
		to   int
		want []string
	}{
		{"single back to front", []string{"a", "b", "c"}, []int{2}, 0, []string{"c", "a", "b"}},
		{"single front past end", []string{"a", "b", "c"}, []int{0}, 3, []string{"b", "c", "a"}},
		{"block keeps relative order", []string{"a", "b", "c", "d"}, []int{0, 2}, 2, []string{"b", "d", "a", "c"}},
		{"destination clamps low", []string{"a", "b", "c"}, []int{1}, -5, []string{"b", "a", "c"}},
		{"destination clamps high", []string{"a", "b", "c"}, []int{1}, 42, []string{"a", "c", "b"}},
		{"out of range sources ignored", []string{"a", "b"}, []int{7, -1}, 0, []string{"a", "b"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := moveOffsets(tc.ids, tc.from, tc.to)
			if !equalIDs(got, tc.want) {
				t.Fatalf("moveOffsets(%v, %v, %d) = %v, want %v", tc.ids, tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestRemoveEpisodesAt(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := mustCreateManual(t, svc, "Trim")
	if err := svc.AddEpisodes(ctx, p.ID, []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}

	if err := svc.RemoveEpisodesAt(ctx, p.ID, []int{3, 1, 99}); err != nil {
		t.Fatalf("RemoveEpisodesAt: %v", err)
	}

	got := store.manual[p.ID].EpisodeIDs
	if !equalIDs(got, []string{"a", "c"}) {
		t.Fatalf("episodes = %v, want [a c]", got)
	}
}

func TestDuplicateManualNamingAndPlacement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := mustCreateManual(t, svc, "Favorites")
	mustCreateManual(t, svc, "Later")
	if err := svc.AddEpisodes(ctx, first.ID, []string{"x", "y"}); err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}

	dup, err := svc.DuplicateManual(ctx, first.ID)
	if err != nil {
		t.Fatalf("DuplicateManual: %v", err)
	}
	if dup == nil {
		t.Fatal("DuplicateManual returned nil")
	}
	if dup.Name != "Favorites Copy" {
		t.Fatalf("name = %q, want %q", dup.Name, "Favorites Copy")
	}
	if dup.ID == first.ID {
		t.Fatal("duplicate shares the original id")
	}

	all, err := svc.Manuals(ctx)
	if err != nil {
		t.Fatalf("Manuals: %v", err)
	}
	want := []string{"Favorites", "Favorites Copy", "Later"}
	if !equalIDs(names(all), want) {
		t.Fatalf("order = %v, want %v", names(all), want)
	}

	// The copy must be independent of the original's episode list.
	if err := svc.AddEpisode(ctx, dup.ID, "z"); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}
	original, _, err := svc.Manual(ctx, first.ID)
	if err != nil {
		t.Fatalf("Manual: %v", err)
	}
	if !equalIDs(original.EpisodeIDs, []string{"x", "y"}) {
		t.Fatalf("original episodes changed: %v", original.EpisodeIDs)
	}
}

func TestDuplicateManualUnknownIDIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)

	dup, err := svc.DuplicateManual(context.Background(), "missing")
	if err != nil {
		t.Fatalf("DuplicateManual: %v", err)
	}
	if dup != nil {
		t.Fatalf("DuplicateManual(unknown) = %v, want nil", dup)
	}
}

func TestUpdateManualPreservesIdentityFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := mustCreateManual(t, svc, "Original")

	edited := p
	edited.Name = "  Renamed  "
	edited.Description = "edited"
	edited.SortOrder = 99
	edited.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := svc.UpdateManual(ctx, edited); err != nil {
		t.Fatalf("UpdateManual: %v", err)
	}

	got := store.manual[p.ID]
	if got.Name != "Renamed" || got.Description != "edited" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.SortOrder != p.SortOrder || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("identity fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) {
		t.Fatal("UpdatedAt not bumped")
	}
}

func TestManualDuration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreateManual(t, svc, "Timed")
	if err := svc.AddEpisodes(ctx, p.ID, []string{"ep-1", "ep-2", "ep-3"}); err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}

	half := 30 * time.Minute
	episodes := map[string]models.Episode{
		"ep-1": {ID: "ep-1", Duration: &half},
		"ep-2": {ID: "ep-2"}, // duration unknown
	}
	resolve := smartlist.Resolver(func(id string) (models.Episode, bool) {
		ep, ok := episodes[id]
		return ep, ok
	})

	total, known, err := svc.ManualDuration(ctx, p.ID, resolve)
	if err != nil {
		t.Fatalf("ManualDuration: %v", err)
	}
	if !known || total != half {
		t.Fatalf("duration = (%v, %v), want (%v, true)", total, known, half)
	}
}

func newValidRules(t *testing.T) rules.Set {
	t.Helper()
	r, err := rules.New(rules.FieldPlayStatus)
	if err != nil {
		t.Fatalf("rules.New: %v", err)
	}
	return rules.NewSet(rules.CombineAll, r)
}

func mustCreateSmart(t *testing.T, svc *Service, name string) models.SmartPlaylist {
	t.Helper()
	p, err := svc.CreateSmart(context.Background(), models.SmartPlaylist{
		Name:  name,
		Rules: newValidRules(t),
	})
	if err != nil {
		t.Fatalf("CreateSmart(%q): %v", name, err)
	}
	if p == nil {
		t.Fatalf("CreateSmart(%q) returned nil", name)
	}
	return *p
}

func seedBuiltIn(t *testing.T, store *memStore, name string) models.SmartPlaylist {
	t.Helper()
	p := models.SmartPlaylist{
		ID:              "builtin-" + name,
		Name:            name,
		Rules:           rules.NewSet(rules.CombineAll),
		SortKey:         models.SortPublishDate,
		SystemGenerated: true,
	}
	store.smart[p.ID] = p
	return p
}

func TestCreateSmartDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateSmart(context.Background(), models.SmartPlaylist{
		Name:       "Fresh",
		Rules:      newValidRules(t),
		AutoUpdate: true,
	})
	if err != nil {
		t.Fatalf("CreateSmart: %v", err)
	}
	if p.SortKey != models.SortPublishDate || !p.SortDescending {
		t.Fatalf("sort defaults = (%q, %v)", p.SortKey, p.SortDescending)
	}
	if p.RefreshSeconds != defaultRefreshSeconds {
		t.Fatalf("RefreshSeconds = %d, want %d", p.RefreshSeconds, defaultRefreshSeconds)
	}
	if p.SystemGenerated {
		t.Fatal("caller-created playlist marked system generated")
	}
}

func TestCreateSmartInvalidRulesSilentlyDropped(t *testing.T) {
	svc, store := newTestService(t)

	bad := rules.NewSet(rules.CombineAll, rules.Rule{
		ID:    "r1",
		Field: rules.FieldTitle,
		Op:    rules.OpWithinLast,
		Value: rules.PeriodValue(rules.PeriodWeek),
	})

	p, err := svc.CreateSmart(context.Background(), models.SmartPlaylist{Name: "Broken", Rules: bad})
	if err != nil {
		t.Fatalf("CreateSmart: %v", err)
	}
	if p != nil {
		t.Fatalf("CreateSmart accepted invalid rules: %+v", p)
	}
	if len(store.smart) != 0 {
		t.Fatalf("store holds %d smart playlists, want 0", len(store.smart))
	}
}

func TestBuiltInSmartPlaylistProtection(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	builtin := seedBuiltIn(t, store, "Up Next")

	if err := svc.DeleteSmart(ctx, builtin.ID); err != nil {
		t.Fatalf("DeleteSmart: %v", err)
	}
	if _, ok := store.smart[builtin.ID]; !ok {
		t.Fatal("built-in playlist was deleted")
	}

	dup, err := svc.DuplicateSmart(ctx, builtin.ID)
	if err != nil {
		t.Fatalf("DuplicateSmart: %v", err)
	}
	if dup != nil {
		t.Fatalf("built-in playlist was duplicated: %+v", dup)
	}
}

func TestUpdateSmartPreservesSystemGenerated(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	builtin := seedBuiltIn(t, store, "Recently Added")

	edited := builtin
	edited.Name = "Hijacked"
	edited.Rules = newValidRules(t)
	edited.SystemGenerated = false

	if err := svc.UpdateSmart(ctx, edited); err != nil {
		t.Fatalf("UpdateSmart: %v", err)
	}

	got := store.smart[builtin.ID]
	if !got.SystemGenerated {
		t.Fatal("SystemGenerated flag lost on update")
	}
	if got.Name != "Hijacked" {
		t.Fatalf("name = %q, rename should still apply", got.Name)
	}
}

func TestDuplicateSmartClonesRules(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	original := mustCreateSmart(t, svc, "Commutes")

	dup, err := svc.DuplicateSmart(ctx, original.ID)
	if err != nil {
		t.Fatalf("DuplicateSmart: %v", err)
	}
	if dup == nil {
		t.Fatal("DuplicateSmart returned nil")
	}
	if dup.Name != "Commutes Copy" {
		t.Fatalf("name = %q", dup.Name)
	}

	// Mutating the copy's rules must not reach the original.
	mutated := *dup
	mutated.Rules.Rules[0].Negate = true
	if err := svc.UpdateSmart(ctx, mutated); err != nil {
		t.Fatalf("UpdateSmart: %v", err)
	}
	if store.smart[original.ID].Rules.Rules[0].Negate {
		t.Fatal("original rules mutated through the duplicate")
	}
}

func TestSmartGroupsPartition(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedBuiltIn(t, store, "Up Next")
	seedBuiltIn(t, store, "Favorites")
	mustCreateSmart(t, svc, "Mine")

	groups, err := svc.SmartGroups(ctx)
	if err != nil {
		t.Fatalf("SmartGroups: %v", err)
	}
	if len(groups.BuiltIn) != 2 {
		t.Fatalf("built-in count = %d, want 2", len(groups.BuiltIn))
	}
	if len(groups.Custom) != 1 || groups.Custom[0].Name != "Mine" {
		t.Fatalf("custom = %v", groups.Custom)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	svc, _ := newTestService(t)

	reg, err := templates.Load()
	if err != nil {
		t.Fatalf("templates.Load: %v", err)
	}
	tpl, ok := reg.Find("Catch Up")
	if !ok {
		t.Fatal("template Catch Up not found")
	}

	p, err := svc.CreateFromTemplate(context.Background(), tpl)
	if err != nil {
		t.Fatalf("CreateFromTemplate: %v", err)
	}
	if p == nil {
		t.Fatal("CreateFromTemplate returned nil")
	}
	if !p.AutoUpdate {
		t.Fatal("template playlist should auto-update")
	}
	if p.RefreshSeconds != defaultRefreshSeconds {
		t.Fatalf("RefreshSeconds = %d, want %d", p.RefreshSeconds, defaultRefreshSeconds)
	}
	if len(p.Rules.Rules) != len(tpl.Rules.Rules) {
		t.Fatalf("rule count = %d, want %d", len(p.Rules.Rules), len(tpl.Rules.Rules))
	}
}

func names(playlists []models.ManualPlaylist) []string {
	out := make([]string, len(playlists))
	for i, p := range playlists {
		out[i] = p.Name
	}
	return out
}

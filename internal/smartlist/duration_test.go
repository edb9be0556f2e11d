/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"testing"
	"time"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

func TestTotalDuration(t *testing.T) {
	catalog := map[string]models.Episode{
		"half":    {ID: "half", Duration: durationPtr(1800 * time.Second)},
		"quarter": {ID: "quarter", Duration: durationPtr(900 * time.Second)},
		"ten":     {ID: "ten", Duration: durationPtr(600 * time.Second)},
		"unknown": {ID: "unknown"},
	}
	resolve := func(id string) (models.Episode, bool) {
		ep, ok := catalog[id]
		return ep, ok
	}

	tests := []struct {
		name  string
		ids   []string
		total time.Duration
		known bool
	}{
		{"sums known durations", []string{"half", "quarter"}, 2700 * time.Second, true},
		{"empty id list is unknown", nil, 0, false},
		{"single unknown duration is unknown", []string{"unknown"}, 0, false},
		{"unknown skipped not zeroed", []string{"ten", "unknown"}, 600 * time.Second, true},
		{"unresolvable ids skipped", []string{"missing", "ten"}, 600 * time.Second, true},
		{"all unresolvable is unknown", []string{"missing"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, known := TotalDuration(tt.ids, resolve)
			if known != tt.known {
				t.Fatalf("known = %v, want %v", known, tt.known)
			}
			if total != tt.total {
				t.Errorf("total = %s, want %s", total, tt.total)
			}
		})
	}
}

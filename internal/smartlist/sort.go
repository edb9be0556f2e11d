/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"sort"
	"strings"
	"time"

	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
)

// Sort orders episodes by the selected key. The sort is stable: episodes
// with equal keys keep their input order, and episodes missing the key sort
// after all episodes that have it regardless of direction.
func Sort(episodes []models.Episode, key models.SortKey, descending bool) []models.Episode {
	out := make([]models.Episode, len(episodes))
	copy(out, episodes)

	sort.SliceStable(out, func(i, j int) bool {
		return lessByKey(out[i], out[j], key, descending)
	})

	return out
}

func lessByKey(a, b models.Episode, key models.SortKey, descending bool) bool {
	switch key {
	case models.SortTitle:
		return lessText(a.Title, b.Title, descending)
	case models.SortPodcast:
		return lessText(a.PodcastTitle, b.PodcastTitle, descending)
	case models.SortDateAdded:
		return lessTime(a.AddedAt, b.AddedAt, descending)
	case models.SortDuration:
		return lessDuration(a.Duration, b.Duration, descending)
	case models.SortRating:
		return lessRating(a.Rating, b.Rating, descending)
	case models.SortResume:
		return lessResume(a, b)
	default: // models.SortPublishDate
		return lessTime(a.PublishedAt, b.PublishedAt, descending)
	}
}

func lessText(a, b string, descending bool) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return false
	}
	if descending {
		return la > lb
	}
	return la < lb
}

func lessTime(a, b *time.Time, descending bool) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if a.Equal(*b) {
		return false
	}
	if descending {
		return a.After(*b)
	}
	return a.Before(*b)
}

func lessDuration(a, b *time.Duration, descending bool) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if *a == *b {
		return false
	}
	if descending {
		return *a > *b
	}
	return *a < *b
}

func lessRating(a, b *int, descending bool) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if *a == *b {
		return false
	}
	if descending {
		return *a > *b
	}
	return *a < *b
}

// lessResume ranks resumable listening: in-progress episodes first, the
// furthest along ahead, so the top of the list is the episode to pick back
// up. Direction flags do not apply to this key.
func lessResume(a, b models.Episode) bool {
	aProgress := a.PlayStatus() == rules.StatusInProgress
	bProgress := b.PlayStatus() == rules.StatusInProgress
	if aProgress != bProgress {
		return aProgress
	}
	return a.Position > b.Position
}

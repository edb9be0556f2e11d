/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
)

// Migrate applies database schema migrations using GORM auto-migrate and
// seeds the built-in smart playlists.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Podcast{},
		&models.Episode{},
		&models.ManualPlaylist{},
		&models.SmartPlaylist{},
	); err != nil {
		return err
	}

	if err := seedBuiltInSmartPlaylists(database); err != nil {
		return fmt.Errorf("seed built-in smart playlists: %w", err)
	}

	return nil
}

// builtInSpec describes one seeded smart playlist.
type builtInSpec struct {
	name        string
	description string
	build       func() rules.Set
	sortKey     models.SortKey
	descending  bool
	maxEpisodes int
}

func mustRule(field rules.Field, mutate func(*rules.Rule)) rules.Rule {
	r, err := rules.New(field)
	if err != nil {
		panic(err)
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func builtInSpecs() []builtInSpec {
	return []builtInSpec{
		{
			name:        "Up Next",
			description: "Recent episodes you haven't finished",
			build: func() rules.Set {
				return rules.NewSet(rules.CombineAll,
					mustRule(rules.FieldPlayStatus, func(r *rules.Rule) {
						r.Op = rules.OpNotEquals
						r.Value = rules.StatusValue(rules.StatusPlayed)
					}),
					mustRule(rules.FieldPublishDate, func(r *rules.Rule) {
						r.Value = rules.PeriodValue(rules.PeriodMonth)
					}),
				)
			},
			sortKey:     models.SortPublishDate,
			descending:  true,
			maxEpisodes: 50,
		},
		{
			name:        "Recently Added",
			description: "Episodes added in the last week",
			build: func() rules.Set {
				return rules.NewSet(rules.CombineAll,
					mustRule(rules.FieldDateAdded, func(r *rules.Rule) {
						r.Value = rules.PeriodValue(rules.PeriodWeek)
					}),
				)
			},
			sortKey:    models.SortDateAdded,
			descending: true,
		},
		{
			name:        "Favorites",
			description: "Episodes you've favorited",
			build: func() rules.Set {
				return rules.NewSet(rules.CombineAll,
					mustRule(rules.FieldFavorited, func(r *rules.Rule) {
						r.Value = rules.BoolValue(true)
					}),
				)
			},
			sortKey:    models.SortPublishDate,
			descending: true,
		},
		{
			name:        "In Progress",
			description: "Episodes you've started but not finished",
			build: func() rules.Set {
				return rules.NewSet(rules.CombineAll,
					mustRule(rules.FieldPlayStatus, func(r *rules.Rule) {
						r.Value = rules.StatusValue(rules.StatusInProgress)
					}),
				)
			},
			sortKey:    models.SortResume,
			descending: true,
		},
		{
			name:        "Downloaded",
			description: "Episodes available offline",
			build: func() rules.Set {
				return rules.NewSet(rules.CombineAll,
					mustRule(rules.FieldDownloadStatus, func(r *rules.Rule) {
						r.Value = rules.DownloadValue(rules.DownloadComplete)
					}),
				)
			},
			sortKey:    models.SortPublishDate,
			descending: true,
		},
	}
}

// seedBuiltInSmartPlaylists inserts the system smart playlists once.
// Existing rows, including user-edited ones, are left untouched.
func seedBuiltInSmartPlaylists(database *gorm.DB) error {
	for i, spec := range builtInSpecs() {
		var existing models.SmartPlaylist
		err := database.
			Where("name = ? AND system_generated = ?", spec.name, true).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		set := spec.build()
		if err := set.Validate(); err != nil {
			return fmt.Errorf("built-in %q has invalid rules: %w", spec.name, err)
		}

		now := time.Now()
		playlist := models.SmartPlaylist{
			ID:              uuid.NewString(),
			Name:            spec.name,
			Description:     spec.description,
			Rules:           set,
			SortKey:         spec.sortKey,
			SortDescending:  spec.descending,
			MaxEpisodes:     spec.maxEpisodes,
			AutoUpdate:      true,
			RefreshSeconds:  3600,
			SystemGenerated: true,
			SortOrder:       i,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := database.Create(&playlist).Error; err != nil {
			return err
		}
	}
	return nil
}

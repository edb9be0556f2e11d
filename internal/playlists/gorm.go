/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlists

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

// GormStore persists playlists through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection as a playlist store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ManualPlaylists(ctx context.Context) ([]models.ManualPlaylist, error) {
	var playlists []models.ManualPlaylist
	err := s.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&playlists).Error
	return playlists, err
}

func (s *GormStore) ManualPlaylist(ctx context.Context, id string) (models.ManualPlaylist, bool, error) {
	var playlist models.ManualPlaylist
	err := s.db.WithContext(ctx).First(&playlist, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ManualPlaylist{}, false, nil
	}
	if err != nil {
		return models.ManualPlaylist{}, false, err
	}
	return playlist, true, nil
}

func (s *GormStore) SaveManualPlaylist(ctx context.Context, p models.ManualPlaylist) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&p).Error
}

func (s *GormStore) DeleteManualPlaylist(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.ManualPlaylist{}, "id = ?", id).Error
}

func (s *GormStore) SmartPlaylists(ctx context.Context) ([]models.SmartPlaylist, error) {
	var playlists []models.SmartPlaylist
	err := s.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&playlists).Error
	return playlists, err
}

func (s *GormStore) SmartPlaylist(ctx context.Context, id string) (models.SmartPlaylist, bool, error) {
	var playlist models.SmartPlaylist
	err := s.db.WithContext(ctx).First(&playlist, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SmartPlaylist{}, false, nil
	}
	if err != nil {
		return models.SmartPlaylist{}, false, err
	}
	return playlist, true, nil
}

func (s *GormStore) SaveSmartPlaylist(ctx context.Context, p models.SmartPlaylist) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&p).Error
}

func (s *GormStore) DeleteSmartPlaylist(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.SmartPlaylist{}, "id = ?", id).Error
}

package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return database
}

func TestMigrateSeedsBuiltInSmartPlaylists(t *testing.T) {
	database := openTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var seeded []models.SmartPlaylist
	if err := database.Where("system_generated = ?", true).Order("sort_order ASC").Find(&seeded).Error; err != nil {
		t.Fatalf("load seeded playlists: %v", err)
	}

	want := []string{"Up Next", "Recently Added", "Favorites", "In Progress", "Downloaded"}
	if len(seeded) != len(want) {
		t.Fatalf("seeded %d built-ins, want %d", len(seeded), len(want))
	}
	for i, name := range want {
		if seeded[i].Name != name {
			t.Errorf("built-in[%d] = %q, want %q", i, seeded[i].Name, name)
		}
		if err := seeded[i].Rules.Validate(); err != nil {
			t.Errorf("built-in %q has invalid rules: %v", name, err)
		}
		if !seeded[i].AutoUpdate {
			t.Errorf("built-in %q should auto-update", name)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int64
	if err := database.Model(&models.SmartPlaylist{}).
		Where("system_generated = ?", true).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("built-in count = %d after re-migrate, want 5", count)
	}
}

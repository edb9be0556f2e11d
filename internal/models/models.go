package models

import (
	"strings"
	"time"

	"github.com/friendsincode/huginn_podcast/internal/rules"
)

// Podcast is a subscribed feed; episodes reference it by id.
type Podcast struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string `gorm:"index"`
	Author      string
	FeedURL     string `gorm:"uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DownloadState tracks local audio availability for an episode.
type DownloadState string

const (
	DownloadStateNone     DownloadState = "none"
	DownloadStateQueued   DownloadState = "queued"
	DownloadStateComplete DownloadState = "complete"
	DownloadStateFailed   DownloadState = "failed"
)

// Episode is catalog metadata for one podcast episode. The playlist engine
// reads episodes and never mutates them. Pointer fields are genuinely
// optional; a nil value means the attribute is unknown, not zero.
type Episode struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	PodcastID     string `gorm:"type:uuid;index"`
	PodcastTitle  string `gorm:"index"`
	Title         string `gorm:"index"`
	Description   string `gorm:"type:text"`
	Duration      *time.Duration
	PublishedAt   *time.Time `gorm:"index"`
	AddedAt       *time.Time
	Played        bool
	Position      time.Duration
	DownloadState DownloadState `gorm:"type:varchar(16)"`
	Rating        *int
	Favorited     bool
	Bookmarked    bool
	Archived      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlayStatus derives the listening state from the played flag and position.
func (e Episode) PlayStatus() rules.PlayStatus {
	switch {
	case e.Played:
		return rules.StatusPlayed
	case e.Position > 0:
		return rules.StatusInProgress
	default:
		return rules.StatusUnplayed
	}
}

// DownloadStatus maps the persisted download state onto the rule vocabulary.
func (e Episode) DownloadStatus() rules.DownloadStatus {
	switch e.DownloadState {
	case DownloadStateComplete:
		return rules.DownloadComplete
	case DownloadStateQueued:
		return rules.DownloadQueued
	default:
		return rules.DownloadNone
	}
}

// Progress returns playback progress as a fraction of the known duration.
// The second return is false when the duration is unknown or zero.
func (e Episode) Progress() (float64, bool) {
	if e.Duration == nil || *e.Duration <= 0 {
		return 0, false
	}
	return float64(e.Position) / float64(*e.Duration), true
}

// SortKey selects the episode attribute smart playlist results order by.
type SortKey string

const (
	SortPublishDate SortKey = "publish_date"
	SortDateAdded   SortKey = "date_added"
	SortTitle       SortKey = "title"
	SortDuration    SortKey = "duration"
	SortRating      SortKey = "rating"
	SortResume      SortKey = "resume"
	SortPodcast     SortKey = "podcast"
)

// ManualPlaylist is a user-ordered list of unique episode ids.
type ManualPlaylist struct {
	ID          string   `gorm:"type:uuid;primaryKey"`
	Name        string   `gorm:"index"`
	Description string   `gorm:"type:text"`
	EpisodeIDs  []string `gorm:"serializer:json"`
	Continuous  bool
	Shuffle     bool
	SortOrder   int `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContainsEpisode reports membership of an episode id.
func (p ManualPlaylist) ContainsEpisode(id string) bool {
	for _, existing := range p.EpisodeIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// SmartPlaylist wraps a rule set with sort, cap, and refresh configuration.
// MaxEpisodes of zero means unbounded. SystemGenerated playlists ship with
// the application and cannot be deleted or duplicated.
type SmartPlaylist struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"index"`
	Description     string    `gorm:"type:text"`
	Rules           rules.Set `gorm:"serializer:json"`
	SortKey         SortKey   `gorm:"type:varchar(32)"`
	SortDescending  bool
	MaxEpisodes     int
	AutoUpdate      bool
	RefreshSeconds  int
	SystemGenerated bool `gorm:"index"`
	SortOrder       int  `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RefreshInterval returns the auto-update period, zero when auto-update is off.
func (p SmartPlaylist) RefreshInterval() time.Duration {
	if !p.AutoUpdate || p.RefreshSeconds <= 0 {
		return 0
	}
	return time.Duration(p.RefreshSeconds) * time.Second
}

// TrimName returns the playlist name with surrounding whitespace removed.
func TrimName(name string) string {
	return strings.TrimSpace(name)
}

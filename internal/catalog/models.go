package catalog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no catalog entry.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one cataloged clip. Pointer fields are nullable columns:
// technical metadata that ffprobe could not report and analysis fields
// that are absent until the clip has been through the pipeline.
type Entry struct {
	ID          int64
	Path        string // relative to the drive root, forward slashes
	Name        string
	SizeBytes   int64
	Fingerprint string
	Device      string
	PreviewPath string

	DurationSeconds *float64
	Width           *int
	Height          *int
	Resolution      string
	FPS             *float64
	Codec           string
	CreationDate    string

	Latitude     *float64
	Longitude    *float64
	LocationName string

	SceneDescription *string
	Tags             []string // nil until analyzed, may be empty after
	Mood             *string
	CameraMovement   *string
	TimeOfDay        *string

	ThumbnailPath string
	ProcessedAt   time.Time
	CreatedAt     time.Time
}

// TextMatch is one full-text search hit, ordered best-first. Rank is
// FTS5's bm25-based rank, more negative meaning more relevant.
type TextMatch struct {
	ID   int64
	Rank float64
}

// Stats summarizes the catalog for reporting.
type Stats struct {
	TotalClips      int
	TotalSizeBytes  int64
	TotalDuration   float64
	ClipsByDevice   map[string]int
	AnalyzedClips   int
	FailedClips     int
	ClipsWithGPS    int
	EmbeddedClips   int
	EarliestCreated string
	LatestCreated   string
}

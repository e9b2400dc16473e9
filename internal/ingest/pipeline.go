package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline.go -package=mocks broll/internal/ingest Putter,Analyzer,Embedder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"broll/internal/analysis"
	"broll/internal/catalog"
	"broll/internal/contextutil"
	"broll/internal/frames"
	"broll/internal/metadata"
	"broll/internal/scanner"
)

// errorDescription is persisted as the scene description when sampling,
// analysis, or embedding fails, so broken files stay visible in the
// catalog instead of being retried forever.
const errorDescription = "ERROR: Could not process video - file may be corrupted or incomplete"

const thumbnailWidth = 480

// Putter is the catalog write operation the pipeline needs.
type Putter interface {
	Put(ctx context.Context, entry *catalog.Entry, embedding []float32) (int64, error)
}

// Analyzer produces a structured analysis from keyframes.
type Analyzer interface {
	Analyze(ctx context.Context, keyframes [][]byte) analysis.Result
}

// Embedder turns searchable text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options tune a processing run.
type Options struct {
	// Keyframes is the number of frames sampled per clip.
	Keyframes int
	// ThumbsDir is where thumbnails are written.
	ThumbsDir string
	// MetadataOnly skips frame sampling, analysis, and embedding,
	// persisting scan and probe metadata only.
	MetadataOnly bool
}

// Summary is the outcome of a processing run.
type Summary struct {
	Ingested int // entries persisted with a usable analysis (or metadata only)
	Failed   int // entries persisted with the error marker
	Errored  int // files that could not be persisted at all
}

// Pipeline turns scan results into catalog entries. Each file moves
// through probe, sample, analyze, embed, persist; failures at the
// analysis stages degrade the entry rather than drop it, and a failure
// on one file never stops the run.
type Pipeline struct {
	store     Putter
	extractor frames.Extractor
	analyzer  Analyzer
	embedder  Embedder
	geocoder  metadata.Geocoder
}

// NewPipeline wires a pipeline from its stages.
func NewPipeline(store Putter, extractor frames.Extractor, analyzer Analyzer, embedder Embedder, geocoder metadata.Geocoder) *Pipeline {
	return &Pipeline{
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		embedder:  embedder,
		geocoder:  geocoder,
	}
}

// Process ingests every scan result and returns counts. The returned
// error is non-nil only when the context is cancelled; per-file failures
// are logged and counted.
func (p *Pipeline) Process(ctx context.Context, results []scanner.ScanResult, opts Options) (Summary, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var summary Summary

	for i, r := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		logger.InfoContext(ctx, "processing clip",
			"path", r.RelPath, "progress", fmt.Sprintf("%d/%d", i+1, len(results)))

		failed, err := p.processOne(ctx, r, opts)
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to ingest clip", "path", r.RelPath, "error", err)
			summary.Errored++
		case failed:
			summary.Failed++
		default:
			summary.Ingested++
		}
	}
	return summary, nil
}

// processOne ingests a single clip. The failed return reports that the
// entry was persisted with the error marker instead of an analysis.
func (p *Pipeline) processOne(ctx context.Context, r scanner.ScanResult, opts Options) (failed bool, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	entry := &catalog.Entry{
		Path:        r.RelPath,
		Name:        r.Name,
		SizeBytes:   r.SizeBytes,
		Fingerprint: r.Fingerprint,
		Device:      r.Device,
		PreviewPath: r.PreviewPath,
	}

	tech := metadata.ExtractTechnical(ctx, r.AbsPath)
	entry.DurationSeconds = tech.DurationSeconds
	entry.Width = tech.Width
	entry.Height = tech.Height
	entry.Resolution = tech.Resolution
	entry.FPS = tech.FPS
	entry.Codec = tech.Codec
	entry.CreationDate = tech.CreationDate

	gps := metadata.ExtractGPS(ctx, r.AbsPath)
	entry.Latitude = gps.Latitude
	entry.Longitude = gps.Longitude
	if gps.Latitude != nil && gps.Longitude != nil {
		entry.LocationName = p.geocoder.Lookup(ctx, *gps.Latitude, *gps.Longitude)
	}

	if opts.MetadataOnly {
		_, err := p.store.Put(ctx, entry, nil)
		return false, err
	}

	set, err := frames.Sample(ctx, p.extractor, r.PreviewPath, r.AbsPath, opts.Keyframes)
	if err != nil {
		logger.WarnContext(ctx, "keyframe sampling failed, persisting error entry",
			"path", r.RelPath, "error", err)
		return true, p.persistError(ctx, entry)
	}

	// ffprobe can fail on files the sampler still handled via the
	// preview; backfill the duration it discovered.
	if entry.DurationSeconds == nil && set.Duration > 0 {
		d := set.Duration
		entry.DurationSeconds = &d
	}

	if opts.ThumbsDir != "" {
		if thumbPath, err := writeThumbnail(set.Thumbnail(), opts.ThumbsDir, r.Fingerprint); err != nil {
			logger.WarnContext(ctx, "failed to write thumbnail", "path", r.RelPath, "error", err)
		} else {
			entry.ThumbnailPath = thumbPath
		}
	}

	result := p.analyzer.Analyze(ctx, set.Frames)
	if result.Status == analysis.StatusFailed {
		return true, p.persistError(ctx, entry)
	}

	entry.SceneDescription = &result.SceneDescription
	entry.Tags = result.Tags
	entry.Mood = &result.Mood
	movement := string(result.CameraMovement)
	entry.CameraMovement = &movement
	timeOfDay := string(result.TimeOfDay)
	entry.TimeOfDay = &timeOfDay

	var embedding []float32
	if text := BuildSearchableText(result, entry.LocationName, entry.Device); text != "" {
		embedding, err = p.embedder.Embed(ctx, text)
		if err != nil {
			logger.WarnContext(ctx, "embedding failed, persisting error entry",
				"path", r.RelPath, "error", err)
			return true, p.persistError(ctx, entry)
		}
	}

	_, err = p.store.Put(ctx, entry, embedding)
	return false, err
}

// persistError records the clip with the error marker: metadata kept,
// every analysis field and the thumbnail cleared, no embedding. The
// entry stays in the catalog so the file is not retried every run.
func (p *Pipeline) persistError(ctx context.Context, entry *catalog.Entry) error {
	desc := errorDescription
	entry.SceneDescription = &desc
	entry.Tags = nil
	entry.Mood = nil
	entry.CameraMovement = nil
	entry.TimeOfDay = nil
	entry.ThumbnailPath = ""
	_, err := p.store.Put(ctx, entry, nil)
	return err
}

// writeThumbnail decodes the frame, scales it down, and saves it under
// thumbsDir keyed by the clip fingerprint. Returns the file name stored
// in the catalog.
func writeThumbnail(frame []byte, thumbsDir, fingerprint string) (string, error) {
	if len(frame) == 0 {
		return "", fmt.Errorf("no thumbnail frame")
	}
	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail frame: %w", err)
	}

	if err := os.MkdirAll(thumbsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	name := fingerprint + ".jpg"
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbsDir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return name, nil
}

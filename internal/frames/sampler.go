package frames

import (
	"context"
	"errors"
	"fmt"

	"broll/internal/contextutil"
)

// minUsableDuration is the threshold below which a probed duration is
// treated as unknown; sub-half-second reports are artifacts of broken
// containers, not real clips.
const minUsableDuration = 0.5

// fallbackOffsets are the fixed timestamps tried in order when no
// duration could be determined.
var fallbackOffsets = []float64{0.5, 3.0, 8.0, 15.0, 30.0}

// SampleSet is the result of keyframe sampling. Frames are in sampled
// timestamp order; the first frame is the thumbnail candidate.
type SampleSet struct {
	Frames     [][]byte
	SourcePath string // file the frames were actually extracted from
	Duration   float64 // 0 when unknown
}

// Thumbnail returns the designated thumbnail frame.
func (s *SampleSet) Thumbnail() []byte {
	if len(s.Frames) == 0 {
		return nil
	}
	return s.Frames[0]
}

// Sample extracts n evenly spaced frames from a clip, preferring the
// low-resolution preview when one exists.
//
// Duration discovery runs a fallback chain, first success wins: the
// preview's container duration, the original's container duration, then
// the original's stream-level duration. With a known duration D the
// timestamps are D*(i+1)/(n+1) so no sample lands on a boundary frame;
// individual extraction failures are skipped. With no usable duration the
// fixed offsets are tried in ascending order, stopping at n frames or the
// first extraction failure (read as past end of file). Zero frames
// overall is an error.
func Sample(ctx context.Context, ex Extractor, previewPath, originalPath string, n int) (*SampleSet, error) {
	logger := contextutil.LoggerFromContext(ctx)

	sourcePath, duration := discoverDuration(ctx, ex, previewPath, originalPath)

	set := &SampleSet{SourcePath: sourcePath, Duration: duration}

	if duration >= minUsableDuration {
		for i := 0; i < n; i++ {
			ts := duration * float64(i+1) / float64(n+1)
			frame, err := ex.ExtractFrame(ctx, sourcePath, ts)
			if err != nil {
				logger.WarnContext(ctx, "frame extraction failed, skipping timestamp",
					"path", sourcePath, "timestamp", ts, "error", err)
				continue
			}
			set.Frames = append(set.Frames, frame)
		}
	} else {
		logger.DebugContext(ctx, "duration unknown, sampling fixed offsets", "path", sourcePath)
		for _, ts := range fallbackOffsets {
			frame, err := ex.ExtractFrame(ctx, sourcePath, ts)
			if err != nil {
				// Most likely past the end of the file; stop probing.
				break
			}
			set.Frames = append(set.Frames, frame)
			if len(set.Frames) >= n {
				break
			}
		}
	}

	if len(set.Frames) == 0 {
		return nil, fmt.Errorf("could not extract any frames from %s", originalPath)
	}
	return set, nil
}

// discoverDuration runs the duration fallback chain and returns the
// source path to extract from plus the duration found (0 when unknown).
// Once the preview fails to report a usable duration, extraction falls
// back to the original file as well.
func discoverDuration(ctx context.Context, ex Extractor, previewPath, originalPath string) (string, float64) {
	if previewPath != "" {
		if d, err := ex.Duration(ctx, previewPath); err == nil && d >= minUsableDuration {
			return previewPath, d
		}
	}

	if d, err := ex.Duration(ctx, originalPath); err == nil && d >= minUsableDuration {
		return originalPath, d
	}

	if d, err := ex.StreamDuration(ctx, originalPath); err == nil && d >= minUsableDuration {
		return originalPath, d
	} else if err != nil && !errors.Is(err, ErrNoDuration) {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "stream duration probe failed",
			"path", originalPath, "error", err)
	}

	return originalPath, 0
}

package frames

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks broll/internal/frames Extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ErrNoDuration is returned by duration probes when the file does not
// report a playback duration.
var ErrNoDuration = errors.New("no duration reported")

// Extractor is the frame-source collaborator: it can probe a file's
// playback duration and extract a single still frame at a timestamp.
type Extractor interface {
	// ExtractFrame returns one still image at the given timestamp as
	// opaque bytes. An error signals failure or past-end-of-file.
	ExtractFrame(ctx context.Context, path string, timestamp float64) ([]byte, error)

	// Duration returns the container-level playback duration in seconds,
	// or ErrNoDuration when the container does not report one.
	Duration(ctx context.Context, path string) (float64, error)

	// StreamDuration probes stream-level duration fields as a last
	// resort; some corrupted or unfinalized recordings only populate
	// these.
	StreamDuration(ctx context.Context, path string) (float64, error)
}

// FFmpeg implements Extractor by shelling out to ffprobe and ffmpeg.
type FFmpeg struct {
	ProbeTimeout   time.Duration
	ExtractTimeout time.Duration
}

// NewFFmpeg returns an FFmpeg extractor with default per-call timeouts.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		ProbeTimeout:   15 * time.Second,
		ExtractTimeout: 30 * time.Second,
	}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Duration string `json:"duration"`
	} `json:"streams"`
}

// Duration probes the container-level duration via ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	probe, err := f.runProbe(ctx, path, "-show_format")
	if err != nil {
		return 0, err
	}
	return parseDuration(probe.Format.Duration)
}

// StreamDuration probes stream-level duration fields via ffprobe and
// returns the first stream that reports one.
func (f *FFmpeg) StreamDuration(ctx context.Context, path string) (float64, error) {
	probe, err := f.runProbe(ctx, path, "-show_streams", "-show_entries", "stream=duration")
	if err != nil {
		return 0, err
	}
	for _, s := range probe.Streams {
		if d, err := parseDuration(s.Duration); err == nil {
			return d, nil
		}
	}
	return 0, ErrNoDuration
}

func (f *FFmpeg) runProbe(ctx context.Context, path string, args ...string) (*probeOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, f.ProbeTimeout)
	defer cancel()

	cmdArgs := append([]string{"-v", "quiet", "-print_format", "json"}, args...)
	cmdArgs = append(cmdArgs, path)
	cmd := exec.CommandContext(ctx, "ffprobe", cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	var probe probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}
	return &probe, nil
}

func parseDuration(raw string) (float64, error) {
	if raw == "" {
		return 0, ErrNoDuration
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ErrNoDuration
	}
	return d, nil
}

// ExtractFrame extracts a single frame at the given timestamp, scaled to
// 720px wide and encoded as JPEG, written by ffmpeg to stdout. Vision
// models do not need 4K frames.
func (f *FFmpeg) ExtractFrame(ctx context.Context, path string, timestamp float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.ExtractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", strconv.FormatFloat(timestamp, 'f', -1, 64),
		"-i", path,
		"-vframes", "1",
		"-vf", "scale=720:-2",
		"-q:v", "3",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"-y",
		"-loglevel", "error",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w - %s", err, truncate(stderr.String(), 200))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at %.2fs", timestamp)
	}
	return stdout.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Technical holds container/stream-level metadata for a clip. All fields
// are optional; the zero value means extraction failed or the field was
// absent.
type Technical struct {
	DurationSeconds *float64
	Width           *int
	Height          *int
	Resolution      string
	FPS             *float64
	Codec           string
	CreationDate    string // ISO 8601 when parseable
}

type ffprobeDoc struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType  string            `json:"codec_type"`
		CodecName  string            `json:"codec_name"`
		Width      int               `json:"width"`
		Height     int               `json:"height"`
		RFrameRate string            `json:"r_frame_rate"`
		Tags       map[string]string `json:"tags"`
	} `json:"streams"`
}

// ExtractTechnical probes a video file with ffprobe and returns whatever
// technical metadata it reports. Probe failure yields an empty Technical,
// not an error: missing metadata never blocks ingestion.
func ExtractTechnical(ctx context.Context, path string) Technical {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Technical{}
	}

	var doc ffprobeDoc
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		return Technical{}
	}

	var t Technical

	var streamTags map[string]string
	for _, s := range doc.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width > 0 && s.Height > 0 {
			w, h := s.Width, s.Height
			t.Width, t.Height = &w, &h
			t.Resolution = fmt.Sprintf("%dx%d", w, h)
		}
		t.Codec = s.CodecName
		if fps, ok := parseFrameRate(s.RFrameRate); ok {
			t.FPS = &fps
		}
		streamTags = s.Tags
		break
	}

	if doc.Format.Duration != "" {
		if d, err := strconv.ParseFloat(doc.Format.Duration, 64); err == nil {
			d = math.Round(d*100) / 100
			t.DurationSeconds = &d
		}
	}

	t.CreationDate = extractCreationDate(doc.Format.Tags, streamTags)

	return t
}

// parseFrameRate converts ffprobe's rational frame rate ("30000/1001")
// or a plain decimal into frames per second, rounded to two places.
func parseFrameRate(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return math.Round(n/d*100) / 100, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return math.Round(f*100) / 100, true
}

// creationDateKeys are the tag names devices use for the recording
// timestamp, checked in order.
var creationDateKeys = []string{"creation_time", "date", "com.apple.quicktime.creationdate"}

func extractCreationDate(formatTags, streamTags map[string]string) string {
	for _, tags := range []map[string]string{formatTags, streamTags} {
		if len(tags) == 0 {
			continue
		}
		lower := make(map[string]string, len(tags))
		for k, v := range tags {
			lower[strings.ToLower(k)] = v
		}
		for _, key := range creationDateKeys {
			if v := lower[key]; v != "" {
				return normalizeDatetime(v)
			}
		}
	}
	return ""
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05",
}

// normalizeDatetime coerces the datetime formats different devices write
// into ISO 8601. Unparseable strings pass through unchanged.
func normalizeDatetime(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("2006-01-02T15:04:05")
		}
	}
	return raw
}

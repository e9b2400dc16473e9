package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GPS holds extracted coordinates. Lat/Lon are both nil or both set.
type GPS struct {
	Latitude  *float64
	Longitude *float64
}

type exiftoolRecord struct {
	GPSLatitude    any    `json:"GPSLatitude"`
	GPSLongitude   any    `json:"GPSLongitude"`
	GPSCoordinates string `json:"GPSCoordinates"`
}

// ExtractGPS reads GPS coordinates from a clip's metadata via exiftool.
// iPhone footage stores them in QuickTime keys, DJI in XMP/QuickTime
// tags; some devices write a combined "lat lon alt" string instead of
// separate numeric tags. Failure of any kind yields an empty GPS.
func ExtractGPS(ctx context.Context, path string) GPS {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "exiftool",
		"-json",
		"-n",
		"-GPSLatitude",
		"-GPSLongitude",
		"-GPSCoordinates",
		"-Keys:GPSCoordinates",
		"-UserData:GPSCoordinates",
		"-ItemList:GPSCoordinates",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil || stdout.Len() == 0 {
		return GPS{}
	}

	var records []exiftoolRecord
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil || len(records) == 0 {
		return GPS{}
	}
	rec := records[0]

	lat, latOK := toFloat(rec.GPSLatitude)
	lon, lonOK := toFloat(rec.GPSLongitude)

	if (!latOK || !lonOK) && rec.GPSCoordinates != "" {
		parts := strings.Fields(strings.ReplaceAll(rec.GPSCoordinates, ",", " "))
		if len(parts) >= 2 {
			if l, err := strconv.ParseFloat(parts[0], 64); err == nil {
				if g, err := strconv.ParseFloat(parts[1], 64); err == nil {
					lat, lon = l, g
					latOK, lonOK = true, true
				}
			}
		}
	}

	if !latOK || !lonOK {
		return GPS{}
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return GPS{}
	}

	return GPS{Latitude: &lat, Longitude: &lon}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

package ingest

import (
	"strings"

	"broll/internal/analysis"
	"broll/internal/scanner"
)

// BuildSearchableText flattens an analysis result plus location and
// device context into the single string that gets embedded and that the
// full-text columns ultimately mirror. Fields join with " | "; unknown
// enum values are omitted so they never match queries. A failed
// analysis yields an empty string, which the pipeline treats as nothing
// to embed.
func BuildSearchableText(result analysis.Result, locationName, device string) string {
	if result.Status == analysis.StatusFailed {
		return ""
	}

	var parts []string
	if result.SceneDescription != "" {
		parts = append(parts, result.SceneDescription)
	}
	if len(result.Tags) > 0 {
		parts = append(parts, strings.Join(result.Tags, " "))
	}
	if result.Mood != "" && result.Mood != "unknown" {
		parts = append(parts, "mood: "+result.Mood)
	}
	if result.CameraMovement != analysis.MovementUnknown {
		parts = append(parts, "camera: "+string(result.CameraMovement))
	}
	if result.TimeOfDay != analysis.TimeUnknown {
		parts = append(parts, "time: "+string(result.TimeOfDay))
	}
	if locationName != "" {
		parts = append(parts, "location: "+locationName)
	}
	switch device {
	case scanner.DeviceDJIPocket3:
		parts = append(parts, "gimbal camera")
	case scanner.DeviceIPhone:
		parts = append(parts, "smartphone camera")
	}
	return strings.Join(parts, " | ")
}

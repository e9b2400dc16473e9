package analysis

import (
	"strings"
	"testing"
)

func TestParseResponse_CleanJSON(t *testing.T) {
	content := `{
		"scene_description": "Drone shot over a rocky coastline at sunset",
		"tags": ["drone", "coastline", "waves"],
		"mood": "serene",
		"camera_movement": "aerial",
		"time_of_day": "sunset"
	}`

	r := ParseResponse(content)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK", r.Status)
	}
	if r.SceneDescription != "Drone shot over a rocky coastline at sunset" {
		t.Errorf("SceneDescription = %q", r.SceneDescription)
	}
	if len(r.Tags) != 3 || r.Tags[0] != "drone" {
		t.Errorf("Tags = %v", r.Tags)
	}
	if r.Mood != "serene" {
		t.Errorf("Mood = %q", r.Mood)
	}
	if r.CameraMovement != MovementAerial {
		t.Errorf("CameraMovement = %q", r.CameraMovement)
	}
	if r.TimeOfDay != TimeSunset {
		t.Errorf("TimeOfDay = %q", r.TimeOfDay)
	}
}

func TestParseResponse_FencedJSON(t *testing.T) {
	content := "Here is the analysis:\n```json\n" +
		`{"scene_description": "City street", "tags": [], "mood": "busy", "camera_movement": "handheld", "time_of_day": "night"}` +
		"\n```\nLet me know if you need more."

	r := ParseResponse(content)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK", r.Status)
	}
	if r.SceneDescription != "City street" {
		t.Errorf("SceneDescription = %q", r.SceneDescription)
	}
	if r.CameraMovement != MovementHandheld {
		t.Errorf("CameraMovement = %q", r.CameraMovement)
	}
}

func TestParseResponse_ObjectBuriedInProse(t *testing.T) {
	content := `Sure! The clip shows the following: {"scene_description": "Golden field", "mood": "warm"} hope that helps.`

	r := ParseResponse(content)
	if r.Status != StatusDegraded {
		t.Fatalf("Status = %v, want StatusDegraded", r.Status)
	}
	if r.SceneDescription != "Golden field" {
		t.Errorf("SceneDescription = %q", r.SceneDescription)
	}
	if r.CameraMovement != MovementUnknown {
		t.Errorf("CameraMovement = %q, want unknown", r.CameraMovement)
	}
}

func TestParseResponse_RawTextFallback(t *testing.T) {
	content := "The video shows a person walking a dog along a beach at dawn."

	r := ParseResponse(content)
	if r.Status != StatusDegraded {
		t.Fatalf("Status = %v, want StatusDegraded", r.Status)
	}
	if r.SceneDescription != content {
		t.Errorf("SceneDescription = %q, want raw text", r.SceneDescription)
	}
	if r.Tags == nil || len(r.Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil", r.Tags)
	}
	if r.TimeOfDay != TimeUnknown {
		t.Errorf("TimeOfDay = %q, want unknown", r.TimeOfDay)
	}
}

func TestParseResponse_RawTextTruncated(t *testing.T) {
	content := strings.Repeat("x", 800)
	r := ParseResponse(content)
	if len(r.SceneDescription) != maxRawFallbackLen {
		t.Errorf("description length = %d, want %d", len(r.SceneDescription), maxRawFallbackLen)
	}
}

func TestParseResponse_Empty(t *testing.T) {
	r := ParseResponse("   ")
	if r.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", r.Status)
	}
}

func TestParseResponse_TagsAsCommaString(t *testing.T) {
	content := `{"scene_description": "Forest", "tags": "trees, moss , fog", "mood": "moody"}`

	r := ParseResponse(content)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK", r.Status)
	}
	want := []string{"trees", "moss", "fog"}
	if len(r.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", r.Tags, want)
	}
	for i := range want {
		if r.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, r.Tags[i], want[i])
		}
	}
}

func TestParseResponse_InvalidEnumsMapToUnknown(t *testing.T) {
	content := `{"scene_description": "Clip", "camera_movement": "swooping", "time_of_day": "teatime"}`

	r := ParseResponse(content)
	if r.CameraMovement != MovementUnknown {
		t.Errorf("CameraMovement = %q, want unknown", r.CameraMovement)
	}
	if r.TimeOfDay != TimeUnknown {
		t.Errorf("TimeOfDay = %q, want unknown", r.TimeOfDay)
	}
	if r.Mood != "unknown" {
		t.Errorf("Mood = %q, want unknown default", r.Mood)
	}
}

func TestParseCameraMovement(t *testing.T) {
	tests := []struct {
		in   string
		want CameraMovement
	}{
		{"static", MovementStatic},
		{" PAN ", MovementPan},
		{"Gimbal", MovementGimbal},
		{"whirling", MovementUnknown},
		{"", MovementUnknown},
	}
	for _, tt := range tests {
		if got := ParseCameraMovement(tt.in); got != tt.want {
			t.Errorf("ParseCameraMovement(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"golden_hour", TimeGoldenHour},
		{"NIGHT", TimeNight},
		{"indoor", TimeIndoor},
		{"twilight", TimeUnknown},
	}
	for _, tt := range tests {
		if got := ParseTimeOfDay(tt.in); got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package analysis

import (
	"context"

	"broll/internal/contextutil"
	"broll/internal/llm"
)

const analysisPrompt = `You are analyzing keyframes from a b-roll video clip for a video editor's searchable catalog.

Look at these frames carefully and return ONLY a valid JSON object (no markdown, no explanation) with these exact fields:

{
  "scene_description": "2-3 sentence vivid description of the scene - what is shown, what is happening, the setting",
  "tags": ["tag1", "tag2", "tag3"],
  "mood": "single mood word or short phrase",
  "camera_movement": "one of: static, pan, tilt, tracking, handheld, aerial, gimbal, dolly, zoom, unknown",
  "time_of_day": "one of: dawn, morning, midday, afternoon, golden_hour, sunset, blue_hour, night, overcast, indoor, unknown"
}

Guidelines for tags (provide 8-12 tags):
- Subject matter (e.g. "people", "ocean", "mountains", "food", "cityscape")
- Actions/movement (e.g. "walking", "waves crashing", "cars driving")
- Setting type (e.g. "beach", "urban", "forest", "restaurant", "market")
- Visual qualities (e.g. "bokeh", "silhouette", "reflections", "lens flare")
- Weather/atmosphere (e.g. "sunny", "foggy", "rainy", "cloudy")
- Colors (e.g. "warm tones", "blue", "neon", "muted colors")

Be specific and practical - a video editor needs to find this clip quickly.`

// VisionAnalyzer sends keyframes to a vision model and parses the reply
// into a structured Result. It never propagates upstream errors: a total
// failure yields the all-unknown result.
type VisionAnalyzer struct {
	client *llm.Client
}

// NewVisionAnalyzer creates an analyzer over the given vision chat client.
func NewVisionAnalyzer(client *llm.Client) *VisionAnalyzer {
	return &VisionAnalyzer{client: client}
}

// Analyze describes the clip shown in the given keyframes.
func (a *VisionAnalyzer) Analyze(ctx context.Context, keyframes [][]byte) Result {
	logger := contextutil.LoggerFromContext(ctx)

	reply, err := a.client.Chat(ctx, []llm.Message{
		{Role: "user", Content: analysisPrompt, Images: keyframes},
	}, llm.ChatParams{Temperature: 0.3, MaxTokens: 1024})
	if err != nil {
		logger.WarnContext(ctx, "vision analysis failed", "error", err)
		return Empty()
	}

	result := ParseResponse(reply)
	if result.Status == StatusDegraded {
		logger.WarnContext(ctx, "vision response was malformed, recovered best-effort subset")
	}
	return result
}

package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Vision models wrap JSON in markdown fences, prepend commentary, or
// produce prose instead of JSON. Parsing tries progressively looser
// extraction before falling back to using the raw text as a description.
var (
	fenceRe      = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	flatObjectRe = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	anyObjectRe  = regexp.MustCompile(`(?s)\{.*\}`)
)

const (
	maxDescriptionLen = 1000
	maxRawFallbackLen = 500
)

type rawAnalysis struct {
	SceneDescription string          `json:"scene_description"`
	Tags             json.RawMessage `json:"tags"`
	Mood             string          `json:"mood"`
	CameraMovement   string          `json:"camera_movement"`
	TimeOfDay        string          `json:"time_of_day"`
}

// ParseResponse parses a vision model reply into a Result. It never
// fails: an unparseable reply degrades to a Result carrying the raw text
// as the description with every other field defaulted.
func ParseResponse(content string) Result {
	content = strings.TrimSpace(content)
	if content == "" {
		return Empty()
	}

	candidate := content
	if strings.Contains(candidate, "```") {
		if m := fenceRe.FindStringSubmatch(candidate); m != nil {
			candidate = strings.TrimSpace(m[1])
		}
	}

	if r, ok := tryParse(candidate); ok {
		r.Status = StatusOK
		return r
	}

	// The reply was not clean JSON; hunt for an object inside it.
	for _, re := range []*regexp.Regexp{flatObjectRe, anyObjectRe} {
		if m := re.FindString(candidate); m != "" {
			if r, ok := tryParse(m); ok {
				r.Status = StatusDegraded
				return r
			}
		}
	}

	// Last resort: the raw text becomes the description.
	r := Empty()
	r.Status = StatusDegraded
	r.SceneDescription = clip(content, maxRawFallbackLen)
	return r
}

func tryParse(candidate string) (Result, bool) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return Result{}, false
	}
	return normalize(raw), true
}

// normalize applies the field-by-field defaulting rules: every field is
// coerced into its valid range, with unknown/empty fallbacks.
func normalize(raw rawAnalysis) Result {
	r := Result{
		SceneDescription: clip(strings.TrimSpace(raw.SceneDescription), maxDescriptionLen),
		Tags:             parseTags(raw.Tags),
		Mood:             strings.TrimSpace(raw.Mood),
		CameraMovement:   ParseCameraMovement(raw.CameraMovement),
		TimeOfDay:        ParseTimeOfDay(raw.TimeOfDay),
	}
	if r.Mood == "" {
		r.Mood = "unknown"
	}
	return r
}

// parseTags accepts either a JSON array of strings or a single
// comma-separated string; anything else yields no tags. Insertion order
// is retained.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		tags := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
		return tags
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var tags []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
		if tags == nil {
			tags = []string{}
		}
		return tags
	}

	return []string{}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

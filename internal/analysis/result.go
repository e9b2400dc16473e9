package analysis

// Status classifies how much of an analysis response survived parsing.
type Status int

const (
	// StatusOK: the upstream response parsed cleanly as structured data.
	StatusOK Status = iota
	// StatusDegraded: the response was malformed; a best-effort subset
	// was recovered with the rest defaulted.
	StatusDegraded
	// StatusFailed: nothing usable came back; every field holds its
	// empty/unknown value.
	StatusFailed
)

// Result is the structured outcome of vision analysis over a clip's
// keyframes. It is always fully populated: fields the upstream response
// did not supply hold their empty/unknown values.
type Result struct {
	Status           Status
	SceneDescription string
	Tags             []string
	Mood             string
	CameraMovement   CameraMovement
	TimeOfDay        TimeOfDay
}

// Empty returns the all-unknown result used for total upstream failure.
func Empty() Result {
	return Result{
		Status:         StatusFailed,
		Tags:           []string{},
		Mood:           "unknown",
		CameraMovement: MovementUnknown,
		TimeOfDay:      TimeUnknown,
	}
}

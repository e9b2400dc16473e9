package analysis

import "strings"

// CameraMovement is the closed vocabulary for how the camera moves in a
// clip. Anything outside the vocabulary maps to MovementUnknown.
type CameraMovement string

const (
	MovementStatic   CameraMovement = "static"
	MovementPan      CameraMovement = "pan"
	MovementTilt     CameraMovement = "tilt"
	MovementTracking CameraMovement = "tracking"
	MovementHandheld CameraMovement = "handheld"
	MovementAerial   CameraMovement = "aerial"
	MovementGimbal   CameraMovement = "gimbal"
	MovementDolly    CameraMovement = "dolly"
	MovementZoom     CameraMovement = "zoom"
	MovementUnknown  CameraMovement = "unknown"
)

var validMovements = map[CameraMovement]bool{
	MovementStatic: true, MovementPan: true, MovementTilt: true,
	MovementTracking: true, MovementHandheld: true, MovementAerial: true,
	MovementGimbal: true, MovementDolly: true, MovementZoom: true,
	MovementUnknown: true,
}

// ParseCameraMovement maps an arbitrary upstream string onto the closed
// vocabulary. The mapping is total: unrecognized input becomes
// MovementUnknown.
func ParseCameraMovement(raw string) CameraMovement {
	m := CameraMovement(strings.ToLower(strings.TrimSpace(raw)))
	if validMovements[m] {
		return m
	}
	return MovementUnknown
}

// TimeOfDay is the closed vocabulary for lighting conditions.
type TimeOfDay string

const (
	TimeDawn       TimeOfDay = "dawn"
	TimeMorning    TimeOfDay = "morning"
	TimeMidday     TimeOfDay = "midday"
	TimeAfternoon  TimeOfDay = "afternoon"
	TimeGoldenHour TimeOfDay = "golden_hour"
	TimeSunset     TimeOfDay = "sunset"
	TimeBlueHour   TimeOfDay = "blue_hour"
	TimeNight      TimeOfDay = "night"
	TimeOvercast   TimeOfDay = "overcast"
	TimeIndoor     TimeOfDay = "indoor"
	TimeUnknown    TimeOfDay = "unknown"
)

var validTimes = map[TimeOfDay]bool{
	TimeDawn: true, TimeMorning: true, TimeMidday: true,
	TimeAfternoon: true, TimeGoldenHour: true, TimeSunset: true,
	TimeBlueHour: true, TimeNight: true, TimeOvercast: true,
	TimeIndoor: true, TimeUnknown: true,
}

// ParseTimeOfDay maps an arbitrary upstream string onto the closed
// vocabulary; unrecognized input becomes TimeUnknown.
func ParseTimeOfDay(raw string) TimeOfDay {
	t := TimeOfDay(strings.ToLower(strings.TrimSpace(raw)))
	if validTimes[t] {
		return t
	}
	return TimeUnknown
}

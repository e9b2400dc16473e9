package scanner

import (
	"path/filepath"
	"strings"
)

// Source device tags recorded on catalog entries.
const (
	DeviceDJIPocket3 = "dji_pocket3"
	DeviceIPhone     = "iphone"
	DeviceUnknown    = "unknown"
)

// DetectDevice classifies the originating device of a clip from its file
// name and ancestor directory names. Pure heuristic: DJI names its files
// DJI_20240115143022_0001_D.mp4, iPhones write IMG_1234.MOV and screen
// recordings RPReplay_Final1234.MP4.
func DetectDevice(path string) string {
	stem := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	switch {
	case strings.HasPrefix(stem, "DJI_"):
		return DeviceDJIPocket3
	case strings.HasPrefix(stem, "IMG_"), strings.HasPrefix(stem, "RPREPLAY"):
		return DeviceIPhone
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		upper := strings.ToUpper(part)
		if strings.Contains(upper, "DJI") {
			return DeviceDJIPocket3
		}
		if strings.Contains(upper, "DCIM") {
			return DeviceIPhone
		}
	}

	return DeviceUnknown
}

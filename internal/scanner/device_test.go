package scanner

import "testing"

func TestDetectDevice(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"dji file prefix", "/vol/footage/DJI_20240115143022_0001_D.mp4", DeviceDJIPocket3},
		{"dji lowercase prefix", "/vol/footage/dji_20240115143022_0001_d.mp4", DeviceDJIPocket3},
		{"iphone img prefix", "/vol/footage/IMG_1234.MOV", DeviceIPhone},
		{"iphone screen recording", "/vol/footage/RPReplay_Final1699.MP4", DeviceIPhone},
		{"dji directory", "/vol/DJI Pocket 3/clip001.mp4", DeviceDJIPocket3},
		{"dcim directory", "/vol/DCIM/100APPLE/clip001.mov", DeviceIPhone},
		{"filename beats directory", "/vol/DCIM/DJI_0001.mp4", DeviceDJIPocket3},
		{"unknown", "/vol/footage/holiday.mp4", DeviceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDevice(tt.path); got != tt.want {
				t.Errorf("DetectDevice(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

package metadata

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"30000/1001", 29.97, true},
		{"60/1", 60, true},
		{"25", 25, true},
		{"0/0", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseFrameRate(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseFrameRate(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeDatetime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-01-15T14:30:22.000000Z", "2024-01-15T14:30:22"},
		{"2024-01-15T14:30:22Z", "2024-01-15T14:30:22"},
		{"2024-01-15T14:30:22", "2024-01-15T14:30:22"},
		{"2024-01-15 14:30:22", "2024-01-15T14:30:22"},
		{"2024:01:15 14:30:22", "2024-01-15T14:30:22"}, // exiftool style
		{"not a date", "not a date"},                   // passes through
	}
	for _, tt := range tests {
		if got := normalizeDatetime(tt.raw); got != tt.want {
			t.Errorf("normalizeDatetime(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExtractCreationDate(t *testing.T) {
	tests := []struct {
		name       string
		formatTags map[string]string
		streamTags map[string]string
		want       string
	}{
		{
			name:       "format tags preferred",
			formatTags: map[string]string{"creation_time": "2024-01-15T14:30:22Z"},
			streamTags: map[string]string{"creation_time": "2020-01-01T00:00:00Z"},
			want:       "2024-01-15T14:30:22",
		},
		{
			name:       "falls back to stream tags",
			streamTags: map[string]string{"creation_time": "2024-01-15T14:30:22Z"},
			want:       "2024-01-15T14:30:22",
		},
		{
			name:       "case insensitive quicktime key",
			formatTags: map[string]string{"com.apple.quicktime.creationDate": "2024-01-15T14:30:22Z"},
			want:       "2024-01-15T14:30:22",
		},
		{
			name: "nothing found",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCreationDate(tt.formatTags, tt.streamTags); got != tt.want {
				t.Errorf("extractCreationDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

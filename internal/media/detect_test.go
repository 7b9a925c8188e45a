package media

import "testing"

func TestIsFLAC(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"song.flac", true},
		{"song.FLAC", true},
		{"/music/a b/01 - song.flac", true},
		{"song.mp3", false},
		{"song.flac.bak", false},
		{"flac", false},
	}
	for _, tc := range cases {
		if got := IsFLAC(tc.path); got != tc.want {
			t.Errorf("IsFLAC(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsOutputFormat(t *testing.T) {
	for _, f := range []string{"mp3", "aac", "ogg", "opus", "m4a", "flac", "MP3"} {
		if !IsOutputFormat(f) {
			t.Errorf("IsOutputFormat(%q) = false, want true", f)
		}
	}
	for _, f := range []string{"wav", "alac", ""} {
		if IsOutputFormat(f) {
			t.Errorf("IsOutputFormat(%q) = true, want false", f)
		}
	}
}

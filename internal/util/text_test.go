package util

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "S1E1.mkv", width: 20, want: "S1E1.mkv"},
		{name: "cut", in: "a very long file name.mkv", width: 10, want: "a very ..."},
		{name: "wide runes", in: "日本語のタイトル", width: 9, want: "日本語..."},
		{name: "no limit", in: "anything", width: 0, want: "anything"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.width); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
		})
	}
}

func TestShortenPath(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "/short", width: 20, want: "/short"},
		{name: "tail kept", in: "/media/tv/Show/Season 1", width: 12, want: ".../Season 1"},
		{name: "tiny width", in: "/media/tv", width: 3, want: "/media/tv"},
		{name: "wide runes", in: "/tv/日本語", width: 7, want: "...本語"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShortenPath(tc.in, tc.width); got != tc.want {
				t.Errorf("ShortenPath(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
		})
	}
}

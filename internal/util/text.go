package util

import "github.com/mattn/go-runewidth"

// Truncate cuts s to at most width terminal cells, ending in "..." when cut.
// A width of zero or less leaves s untouched.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// ShortenPath keeps the tail of path so it fits in width cells.
func ShortenPath(path string, width int) string {
	if width <= 3 || runewidth.StringWidth(path) <= width {
		return path
	}
	runes := []rune(path)
	used := 3
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if used+w > width {
			break
		}
		used += w
		i--
	}
	return "..." + string(runes[i:])
}

package layout

import "strings"

const Ellipsis = "..."

// Truncate shortens text one character at a time, appending Ellipsis, until
// it fits width. It returns "" when not even the ellipsis fits.
func Truncate(text string, width, size float64, bold bool, m Measurer) string {
	if text == "" || m.TextWidth(text, size, bold) <= width {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + Ellipsis
		if m.TextWidth(candidate, size, bold) <= width {
			return candidate
		}
	}
	if m.TextWidth(Ellipsis, size, bold) <= width {
		return Ellipsis
	}
	return ""
}

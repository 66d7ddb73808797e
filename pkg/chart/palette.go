package chart

var palette = [...]string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // yellow
	"#8b5cf6", // purple
	"#06b6d4", // cyan
	"#f97316", // orange
	"#84cc16", // lime
	"#ec4899", // pink
	"#6b7280", // gray
}

// Palette returns a copy of the default color palette.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette[:])
	return out
}

// DefaultColor returns the palette color for index i, cycling past the end.
func DefaultColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// ColorAt returns custom[i] when present and non-empty, otherwise the
// palette color for i.
func ColorAt(custom []string, i int) string {
	if i >= 0 && i < len(custom) && custom[i] != "" {
		return custom[i]
	}
	return DefaultColor(i)
}

// Colors returns n colors drawn from custom with palette fallback.
func Colors(custom []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = ColorAt(custom, i)
	}
	return out
}

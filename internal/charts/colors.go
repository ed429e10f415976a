package charts

// Palette is cycled to color chart entries.
var Palette = []string{
	"#1DB954", // green
	"#7D56F4", // violet
	"#FF6B6B", // coral
	"#FFA500", // orange
	"#4ECDC4", // teal
	"#F7D794", // sand
	"#3C91E6", // blue
	"#E056FD", // magenta
	"#A3CB38", // lime
	"#9AA5B1", // slate
}

// AssignColors returns n colors taken from [Palette] in order, wrapping around.
func AssignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}
	return colors
}

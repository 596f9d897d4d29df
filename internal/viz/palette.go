package viz

// palette is the fixed group color cycle.
var palette = []string{
	"#4A90D9", // blue
	"#E8923A", // orange
	"#27AE60", // green
	"#9B59B6", // purple
	"#E74C3C", // red
	"#1ABC9C", // teal
	"#F1C40F", // yellow
	"#7F8C8D", // gray
	"#D35400", // pumpkin
	"#34495E", // slate
}

// Palette assigns each group a color, cycling through the fixed palette in
// the order groups are given. Equal input yields equal output.
func Palette(groups []string) map[string]string {
	colors := make(map[string]string, len(groups))
	i := 0
	for _, g := range groups {
		if _, ok := colors[g]; ok {
			continue
		}
		colors[g] = palette[i%len(palette)]
		i++
	}
	return colors
}

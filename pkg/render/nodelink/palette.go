package nodelink

import "github.com/matzehuels/modelgraph/pkg/model"

// DefaultPalette is a set of visually distinct soft colors.
var DefaultPalette = []string{
	"#C2E7D9", "#FFD6A5", "#FFB5A7", "#A0C4FF", "#BDB2FF",
	"#B5E48C", "#FEC5BB", "#FCD5CE", "#D0F4DE", "#FFF0B3",
	"#A3C9A8", "#B8D0EB", "#E2B8A6", "#DDBDF1", "#B2F7EF",
}

// fallbackFill colors a node whose type has no assignment.
const fallbackFill = "#F7F9FC"

// AssignColors maps every module type to a palette color in first-seen
// order, cycling through the palette when it runs out.
// An empty palette falls back to [DefaultPalette].
func AssignColors(layers []model.LayerRecord, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	colors := make(map[string]string)
	for _, l := range layers {
		t := l.Type()
		if _, ok := colors[t]; !ok {
			colors[t] = palette[len(colors)%len(palette)]
		}
	}
	return colors
}

package canvas

import (
	"go-shoe-studio/internal/geometry"
)

// Label box size inside each moodboard cell.
const (
	labelWidth  = 200.0
	labelHeight = 40.0
)

// SeedMoodboard lays out the six category cells, each with a grey background,
// a white label box and the category text. It does nothing if the document
// already has shapes, and reports whether it seeded.
func SeedMoodboard(e Engine) (bool, error) {
	if len(e.ListShapes()) > 0 {
		return false, nil
	}

	specs := make([]ShapeSpec, 0, 3*len(geometry.Categories))
	for _, r := range geometry.MoodboardRegions() {
		b := r.Bounds
		specs = append(specs,
			ShapeSpec{
				Type: ShapeGeo, X: b.X, Y: b.Y, W: b.Width, H: b.Height,
				Props: map[string]string{"geo": "rectangle", "fill": "semi", "color": "grey", "category": string(r.Category)},
			},
			ShapeSpec{
				Type: ShapeGeo, X: b.X + b.Width/2 - labelWidth/2, Y: b.Y + 20, W: labelWidth, H: labelHeight,
				Props: map[string]string{"geo": "rectangle", "fill": "solid", "color": "white"},
			},
			ShapeSpec{
				Type: ShapeText, X: b.X + b.Width/2 - 90, Y: b.Y + 30,
				Props: map[string]string{"text": string(r.Category), "color": "black", "font": "draw"},
			},
		)
	}
	if _, err := e.CreateShapes(specs); err != nil {
		return false, err
	}
	return true, nil
}

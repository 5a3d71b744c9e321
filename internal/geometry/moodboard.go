package geometry

import "math"

// Category names the six fixed moodboard cells.
type Category string

const (
	CategoryColor      Category = "color"
	CategoryMaterial   Category = "material"
	CategorySilhouette Category = "silhouette"
	CategoryDetail     Category = "detail"
	CategoryMood       Category = "mood"
	CategoryReference  Category = "reference"
)

// Categories lists the cells in layout order (row-major, 3 per row).
var Categories = []Category{
	CategoryColor, CategoryMaterial, CategorySilhouette,
	CategoryDetail, CategoryMood, CategoryReference,
}

// Moodboard layout constants.
const (
	BoardWidth   = 1200.0
	BoardHeight  = 800.0
	BoardMargin  = 20.0
	BoardOriginX = 50.0
	BoardOriginY = 50.0
	boardColumns = 3
)

// Region is a named category cell.
type Region struct {
	Category Category `json:"category"`
	Bounds   Rect     `json:"bounds"`
}

// MoodboardRegions returns the six category cells. Each cell covers a sixth of
// the board area with a 3:2 aspect ratio.
func MoodboardRegions() []Region {
	cellArea := BoardWidth * BoardHeight / float64(len(Categories))
	w := math.Sqrt(cellArea * 3 / 2)
	h := cellArea / w

	regions := make([]Region, 0, len(Categories))
	for i, c := range Categories {
		row := i / boardColumns
		col := i % boardColumns
		regions = append(regions, Region{
			Category: c,
			Bounds: Rect{
				X:      BoardOriginX + float64(col)*(w+BoardMargin),
				Y:      BoardOriginY + float64(row)*(h+BoardMargin),
				Width:  w,
				Height: h,
			},
		})
	}
	return regions
}

// RegionFor looks up a category cell.
func RegionFor(c Category) (Region, bool) {
	for _, r := range MoodboardRegions() {
		if r.Category == c {
			return r, true
		}
	}
	return Region{}, false
}
